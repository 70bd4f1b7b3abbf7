package models

import "io"

// AudioFile describes a stored audio file. Files are scoped by OwnerID
// and never updated in place.
type AudioFile struct {
	OwnerID  int64  `json:"-"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Location string `json:"location"` // filesystem path or object URL
}

// AudioStream is an open audio file ready to be copied to a client.
// The caller must close Body.
type AudioStream struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}
