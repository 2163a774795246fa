package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idLength   = 7
)

// GenerateID returns a short random id for object keys.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return ""
	}
	return id
}
