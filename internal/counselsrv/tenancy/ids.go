package tenancy

import "crypto/rand"

const accountNumberLen = 6

// NewAccountNumber generates a 6-character tenant account number in
// the style of an airline PNR. Collisions are possible (about 1.5% in
// 10 million keys); callers must check uniqueness in the database and
// retry rather than trust the value.
func NewAccountNumber() string {
	c, err := shortCode(accountNumberLen)
	if err != nil {
		return ""
	}
	return "T" + c
}

func shortCode(length int) (string, error) {
	const charSet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		randomBytes[i] = charSet[int(randomBytes[i])%len(charSet)]
	}
	// First character must be a letter
	if randomBytes[0] >= '0' && randomBytes[0] <= '9' {
		randomBytes[0] = charSet[int(randomBytes[0])%26]
	}
	return string(randomBytes), nil
}
