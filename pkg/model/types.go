package model

import internalmodel "github.com/goliatone/go-alohomora/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeSelect  = internalmodel.FieldTypeSelect
)

type Option = internalmodel.Option
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel

// DefaultLabeler re-exports the label generator used by the form builders.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}
