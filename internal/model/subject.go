package model

import "strings"

// Subject is a person under research. The document pipeline only reads it
// to namespace storage paths.
type Subject struct {
	ID         int64  `json:"id"`
	Token      string `json:"uuid"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
}

// Folder returns the storage folder name of the subject: its name parts followed
// by its unique token, joined with "-". Two subjects with identical names still
// get different folders because their tokens differ.
func (s Subject) Folder() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.LastName, s.FirstName, s.MiddleName, s.Token} {
		if p = sanitizeFolderPart(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

var folderReplacer = strings.NewReplacer("/", "_", "\\", "_", "-", "_")

func sanitizeFolderPart(p string) string {
	p = strings.Join(strings.Fields(p), "_")
	return folderReplacer.Replace(p)
}
