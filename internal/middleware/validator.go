package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Input validation and sanitization utilities

const MaxUploadSize int64 = 10 << 20

var (
	allowedMimes = map[string]bool{
		"application/vnd.ms-excel": true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	}
	allowedExts = map[string]bool{".xls": true, ".xlsx": true}

	idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// ValidateUpload checks extension and MIME type together, then size.
func ValidateUpload(filename, mimeType string, size, limit int64) error {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] || !allowedMimes[strings.TrimSpace(strings.ToLower(mimeType))] {
		return fmt.Errorf("Invalid file type. Only Excel files (.xls, .xlsx) are allowed.")
	}
	if limit <= 0 {
		limit = MaxUploadSize
	}
	if size > limit {
		return fmt.Errorf("File size too large. Maximum size is %dMB.", limit>>20)
	}
	return nil
}

// ValidateID checks the shape of a path id (uuid and similar).
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidatePage parses the page query value (default 1)
func ValidatePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ValidateLimit validates pagination limit
func ValidateLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
