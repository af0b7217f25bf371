package main

import (
	"planner/internal/agenda"
	"planner/internal/repository"
	"planner/internal/task"
)

// TaskResponseCLI reports a single-task command.
type TaskResponseCLI struct {
	Action string     `json:"action"` // "added" | "updated" | "done" | "reopened" | "removed"
	ID     string     `json:"id"`
	Task   *task.Task `json:"task,omitempty"`
}

// ViewResponseCLI is the output of show and today.
type ViewResponseCLI struct {
	Mode    agenda.Mode         `json:"mode"`
	Label   string              `json:"label"`
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Buckets *repository.Buckets `json:"buckets"`
}

// CalendarDayCLI is one cell of the month grid.
type CalendarDayCLI struct {
	Date      string `json:"date"`
	InMonth   bool   `json:"inMonth"`
	Today     bool   `json:"today,omitempty"`
	Scheduled int    `json:"scheduled,omitempty"`
	Deadlines int    `json:"deadlines,omitempty"`
}

// CalendarResponseCLI is the output of calendar.
type CalendarResponseCLI struct {
	Month     string               `json:"month"`
	Label     string               `json:"label"`
	WeekStart string               `json:"weekStart"`
	Weeks     [][]CalendarDayCLI   `json:"weeks"`
	Scheduled repository.DayCounts `json:"scheduled"`
	Deadlines repository.DayCounts `json:"deadlines"`
}

// TransferResponseCLI reports an export or import.
type TransferResponseCLI struct {
	Action      string `json:"action"` // "exported" | "imported"
	Path        string `json:"path,omitempty"`
	Format      string `json:"format"`
	Compressed  bool   `json:"compressed,omitempty"`
	Tasks       int    `json:"tasks"`
	Overwritten int    `json:"overwritten,omitempty"`
}
