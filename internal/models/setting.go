package models

import "time"

const (
	SettingInt      = "int"
	SettingBool     = "bool"
	SettingString   = "string"
	SettingDuration = "duration"
)

type Setting struct {
	Key         string    `json:"key"         yaml:"key"`
	Value       string    `json:"value"       yaml:"value"`
	Type        string    `json:"type"        yaml:"type"`
	Description string    `json:"description" yaml:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"  yaml:"-"`
}

type SettingRequest struct {
	Value string `json:"value" example:"45m"`
}
