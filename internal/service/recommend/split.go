package recommend

import "strings"

// LINE の返信は1つの replyToken につき最大5メッセージまで。
const maxReplyMessages = 5

// splitSegments breaks the generated text into one message per listing.
// The model is asked to separate listings with "###"; the first block is
// kept verbatim and the marker is restored on the rest.
func splitSegments(content string) []string {
	parts := strings.Split(content, "###")
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}

	if len(blocks) == 0 {
		return []string{emptyResultMessage}
	}

	segments := make([]string, 0, len(blocks))
	segments = append(segments, blocks[0])
	for _, block := range blocks[1:] {
		segments = append(segments, "### "+block)
	}

	// 超過分は最後のメッセージへまとめる。
	if len(segments) > maxReplyMessages {
		rest := strings.Join(segments[maxReplyMessages-1:], "\n\n")
		segments = append(segments[:maxReplyMessages-1], rest)
	}

	return segments
}
