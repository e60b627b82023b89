package api

import "github.com/nyberg/lagu/internal/models"

// SaveNoteRequest is the request body for saving a note.
type SaveNoteRequest struct {
	Content          string `json:"content"`
	PreviousFilename string `json:"previous_filename,omitempty"`
	Folder           string `json:"folder,omitempty"`
}

// NavigateRequest is the request body for directory navigation.
type NavigateRequest struct {
	Action string         `json:"action"` // "into" | "up" | "root"
	Folder *models.Folder `json:"folder,omitempty"`
}

// ImportRequest selects an import source: a document tree locator, or
// an explicit list of files for platforms without tree access.
type ImportRequest struct {
	Tree  string   `json:"tree,omitempty"`
	Files []string `json:"files,omitempty"`
}

// ExportRequest names the export destination; empty means a fresh
// temporary directory.
type ExportRequest struct {
	Dest string `json:"dest,omitempty"`
}

// ExportResponse wraps the batch outcome with the resolved destination.
type ExportResponse struct {
	models.BatchResult
	Dest string `json:"dest"`
}

// SetRootRequest replaces the root override; an empty locator reverts
// to the app-private default.
type SetRootRequest struct {
	Locator string `json:"locator"`
}

// RootResponse reports the effective root.
type RootResponse struct {
	Root string `json:"root"`
}

// PrefsResponse is the full preference bag.
type PrefsResponse struct {
	ShowTimestamps   bool   `json:"show_timestamps"`
	WelcomeCompleted bool   `json:"welcome_completed"`
	QuickNote        string `json:"quick_note"`
	AutoSaveOnExit   bool   `json:"auto_save_on_exit"`
	FABLeft          bool   `json:"fab_left"`
}

// SetPrefRequest carries one preference value as a string; boolean
// preferences parse it with strconv.ParseBool.
type SetPrefRequest struct {
	Value string `json:"value"`
}
