package storage

import "strings"

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "/\\\x00") {
		return ErrInvalidKey
	}
	return nil
}

func checkSize(value string, limit int64) error {
	if limit > 0 && int64(len(value)) > limit {
		return ErrValueTooLarge
	}
	return nil
}
