// Package validator provides semantic field validation helpers shared by
// the workflow services.
package validator

import (
	"net/mail"
	"net/url"
	"path/filepath"
	"strings"
)

var documentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".odt":  true,
	".rtf":  true,
	".txt":  true,
}

// IsEmpty reports whether s contains nothing but whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsEmail reports whether s parses as an email address.
func IsEmail(s string) bool {
	if IsEmpty(s) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// IsURL reports whether s parses as an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsDocument reports whether the file name carries a CV document extension.
func IsDocument(name string) bool {
	return documentExts[strings.ToLower(filepath.Ext(name))]
}
