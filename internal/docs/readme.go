// Package docs renders the command reference into README.md.
package docs

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"text/template"

	"runners-bot/internal/command"
	"runners-bot/pkg/cmd"
)

// CommandSection lists the registered commands as markdown bullets, sorted by
// name, each shown with the prefix and its usage.
func CommandSection(registry *cmd.Registry, prefix string) string {
	var buf bytes.Buffer
	for _, c := range registry.All() {
		usage := c.Name()
		if u, ok := cmd.Root(c).(command.UsageProvider); ok {
			usage = u.Usage()
		}
		fmt.Fprintf(&buf, "- **`%s%s`** %s\n", prefix, usage, c.Description())
	}
	return buf.String()
}

// UpdateReadme executes tmplPath with the command section and writes outPath.
func UpdateReadme(registry *cmd.Registry, prefix, tmplPath, outPath string) error {
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", tmplPath, err)
	}

	data := struct {
		CommandSections string
	}{
		CommandSections: CommandSection(registry, prefix),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmplPath, err)
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return err
	}

	log.Printf("[INFO] %s updated with current commands", outPath)
	return nil
}
