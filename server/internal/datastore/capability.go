package datastore

import (
	"strings"
)

// Class determines which launch form fields apply to a datastore.
type Class string

const (
	ClassDefault Class = "default"
	ClassMongoDB Class = "mongodb"
	ClassVertica Class = "vertica"
)

const (
	tokenMongoDB = "mongodb"
	tokenVertica = "vertica"
)

// Classify returns the capability class for the given datastore name. It is
// the only place that maps datastore names to classes.
func Classify(name string) Class {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, tokenVertica):
		return ClassVertica
	case strings.Contains(lower, tokenMongoDB):
		return ClassMongoDB
	default:
		return ClassDefault
	}
}

func (c Class) String() string {
	return string(c)
}

// ParseSelection splits a datastore option key of the form
// "{datastore}-{version}" at the first hyphen.
func ParseSelection(key string) (name, version string, ok bool) {
	name, version, found := strings.Cut(key, "-")
	if !found || name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}

// SelectionKey is the inverse of ParseSelection.
func SelectionKey(name, version string) string {
	return name + "-" + version
}

// SelectionLabel is the human readable label for a datastore option.
func SelectionLabel(name, version string) string {
	return name + " - " + version
}
