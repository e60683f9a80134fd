//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EmitResult writes the result document as YAML to the provided writer,
// falling back to stdout when none is given. The document is what the
// downstream packaging pipeline consumes.
func EmitResult(out io.Writer, result any) error {
	if out == nil {
		out = os.Stdout
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
