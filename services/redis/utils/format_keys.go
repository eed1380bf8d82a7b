package utils

import "fmt"

// FormatSessionKey returns the key for a cached token session
// Format: "session:{token}"
func FormatSessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// FormatMatchSnapshotKey returns the key for a cached match status payload
// Format: "match:{id}:status"
func FormatMatchSnapshotKey(matchID uint) string {
	return fmt.Sprintf("match:%d:status", matchID)
}
