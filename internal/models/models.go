package models

import "time"

// RenameRecord is one completed rename inside a directory.
type RenameRecord struct {
	Original string
	New      string
}

// Media is a raw file found in the processed directory.
type Media struct {
	Name string
	Path string
	Err  error `json:"-"`
}

// LedgerEntry remembers a rename of a file identified by its content hash.
type LedgerEntry struct {
	Dir       string
	Original  string
	New       string
	Timestamp time.Time
}

// Status is the per-extension result of a group rename.
type Status int

const (
	Renamed Status = iota
	WouldRename
	Collision
	AlreadyNamed
)

func (s Status) String() string {
	switch s {
	case Renamed:
		return "renamed"
	case WouldRename:
		return "would rename"
	case Collision:
		return "collision"
	case AlreadyNamed:
		return "already named"
	default:
		return "unknown"
	}
}

// SiblingResult describes what happened to one file of a group.
type SiblingResult struct {
	Ext    string
	From   string
	To     string
	Status Status
}

// Verdict summarizes the processing of one raw file.
type Verdict int

const (
	Done Verdict = iota
	Skipped
	Failed
)

func (v Verdict) String() string {
	switch v {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one raw file.
type Outcome struct {
	File     string
	BaseName string
	Verdict  Verdict
	Siblings []SiblingResult
	Applied  []RenameRecord
	Err      error
}
