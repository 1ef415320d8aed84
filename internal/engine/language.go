package engine

import (
	"fmt"

	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/errors"
)

// LanguageAccess is the engine-facing view of one configured language:
// its identity plus the generator invocation derived from the language's
// opaque options.
type LanguageAccess struct {
	Name           string
	Setup          string
	Command        string
	Args           []string
	FileExtensions []string
	Options        map[string]interface{}
}

// CreateLanguageAccess builds the per-language access table, keyed by
// the language identifier. Recognized options: "command" (string),
// "args" (list of strings), "file_extensions" (list of strings). All
// remaining options are carried through uninterpreted.
func CreateLanguageAccess(languages []config.Language) (map[string]LanguageAccess, error) {
	accesses := make(map[string]LanguageAccess, len(languages))

	for _, language := range languages {
		access := LanguageAccess{
			Name:    language.Name,
			Setup:   language.Setup,
			Options: language.Options,
		}

		if command, ok := language.Options["command"]; ok {
			str, ok := command.(string)
			if !ok {
				return nil, errors.NewConfigError("LANGUAGE_COMMAND",
					fmt.Sprintf("language %q: command must be a string", language.Name), nil)
			}
			access.Command = str
		}

		args, err := stringList(language.Name, "args", language.Options["args"])
		if err != nil {
			return nil, err
		}
		access.Args = args

		extensions, err := stringList(language.Name, "file_extensions", language.Options["file_extensions"])
		if err != nil {
			return nil, err
		}
		access.FileExtensions = extensions

		accesses[language.Name] = access
	}

	return accesses, nil
}

func stringList(language, key string, value interface{}) ([]string, error) {
	if value == nil {
		return nil, nil
	}

	switch typed := value.(type) {
	case []string:
		return typed, nil
	case []interface{}:
		result := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, errors.NewConfigError("LANGUAGE_OPTIONS",
					fmt.Sprintf("language %q: %s must be a list of strings", language, key), nil)
			}
			result = append(result, str)
		}
		return result, nil
	default:
		return nil, errors.NewConfigError("LANGUAGE_OPTIONS",
			fmt.Sprintf("language %q: %s must be a list of strings", language, key), nil)
	}
}
