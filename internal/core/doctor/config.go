package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/Meet0105/repoza-sub001/internal/core/config"
)

// ConfigCheck verifies the config file exists and passes validation.
type ConfigCheck struct {
	path    string
	dataDir string
}

// NewConfigCheck creates a check for the config file at path.
func NewConfigCheck(path, dataDir string) *ConfigCheck {
	return &ConfigCheck{path: path, dataDir: dataDir}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.path)
	switch {
	case c.path == "" || errors.Is(err, os.ErrNotExist):
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusWarn,
			Detail: "not found, using defaults",
		})
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	case info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusFail,
			Detail: c.path + " is a directory",
		})
		return result
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusPass,
			Detail: c.path,
		})
	}

	_, err = config.Load(c.path, c.dataDir)
	if err == nil {
		result.Items = append(result.Items, CheckItem{Label: "validation", Status: StatusPass})
		return result
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			result.Items = append(result.Items, CheckItem{
				Label:  fe.Field,
				Status: StatusFail,
				Detail: fe.Err.Error(),
			})
		}
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "validation",
		Status: StatusFail,
		Detail: err.Error(),
	})
	return result
}
