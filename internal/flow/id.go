package flow

import "github.com/google/uuid"

// GenerateID returns prefix-<random uuid>.
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
