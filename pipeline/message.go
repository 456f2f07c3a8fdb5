package pipeline

import (
	"github.com/YuminosukeSato/iziml/pkg/errors"
)

// UserMessage returns the single line shown to the user for a failed run.
func UserMessage(err error) string {
	switch errors.KindOf(err) {
	case errors.KindNoNumericColumns:
		return "Uploaded CSV does not contain numeric data."
	case errors.KindInsufficientColumns:
		return "Uploaded CSV must contain at least one feature column and one target column."
	case errors.KindEmptyDataset:
		return "Uploaded CSV has no complete rows after removing missing values."
	case errors.KindInvalidConfig:
		var ce *errors.ConfigError
		if errors.As(err, &ce) {
			return "Invalid parameter " + ce.Field + ": " + ce.Reason + "."
		}
		return "Invalid parameters."
	}
	return "An error occurred: " + err.Error()
}
