package note

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kistconnect/portal/core"
)

var (
	singleFileTag  = "singlefile"
	singleFileText = "only one of fileUrl or fileStorageId may be set"
)

// InitValidators registers the note validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(noteStructValidation, NewNote{})
	core.RegisterCustomTranslation(validate, translator, singleFileTag, singleFileText)
}

// noteStructValidation does struct level validation on NewNote.
func noteStructValidation(sl validator.StructLevel) {
	nn, ok := sl.Current().Interface().(NewNote)
	if !ok {
		return
	}
	// a note points to an external file or to an uploaded one, never both
	if nn.FileURL != "" && nn.FileStorageID != "" {
		sl.ReportError(nn.FileURL, "fileUrl", "FileURL", singleFileTag, "")
		sl.ReportError(nn.FileStorageID, "fileStorageId", "FileStorageID", singleFileTag, "")
	}
}
