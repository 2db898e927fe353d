package assets

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	ModelNamePrefix = "model_"
	modelSuffixLen  = 9
)

// NewModelName returns "model_" followed by 9 base-36 characters taken from
// a random UUID.
func NewModelName() string {
	id := uuid.New()
	v := binary.BigEndian.Uint64(id[:8]) ^ binary.BigEndian.Uint64(id[8:])
	s := strconv.FormatUint(v, 36)
	if len(s) < modelSuffixLen {
		s = strings.Repeat("0", modelSuffixLen-len(s)) + s
	}
	return ModelNamePrefix + s[len(s)-modelSuffixLen:]
}

// UniqueModelName draws names until taken reports one as free.
func UniqueModelName(taken func(string) bool) string {
	for {
		name := NewModelName()
		if !taken(name) {
			return name
		}
	}
}
