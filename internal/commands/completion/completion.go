package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `#! /bin/bash

_prbuddy_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _prbuddy_bash_autocomplete prbuddy
`

const zshCompletionScript = `#compdef prbuddy

_prbuddy() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _prbuddy prbuddy
`

const installMarker = "# PR Buddy Shell Completion"

const installInfo = `
` + installMarker + `
if command -v prbuddy >/dev/null 2>&1; then
	source <(prbuddy completion %s)
fi
`

func NewCompletionCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:        "completion",
		Usage:       t.GetMessage("completion.command_usage", 0, nil),
		Description: t.GetMessage("completion.command_description", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "bash",
				Usage: t.GetMessage("completion.bash_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprint(cmd.Root().Writer, bashCompletionScript)
					return err
				},
			},
			{
				Name:  "zsh",
				Usage: t.GetMessage("completion.zsh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprint(cmd.Root().Writer, zshCompletionScript)
					return err
				},
			},
			{
				Name:  "install",
				Usage: t.GetMessage("completion.install_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("%s", t.GetMessage("completion.error_home_dir", 0, map[string]interface{}{"Error": err.Error()}))
					}
					configFile, added, err := install(os.Getenv("SHELL"), home)
					if err != nil {
						return fmt.Errorf("%s", t.GetMessage("completion.error_install", 0, map[string]interface{}{"Error": err.Error()}))
					}

					w := cmd.Root().Writer
					msg := "completion.installed_success"
					if !added {
						msg = "completion.already_installed"
					}
					_, _ = fmt.Fprintln(w, t.GetMessage(msg, 0, map[string]interface{}{"File": configFile}))
					_, _ = fmt.Fprintln(w, t.GetMessage("completion.restart_shell", 0, nil))
					_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
					return nil
				},
			},
		},
	}
}

// install appends the completion hook to the shell rc file under home. It
// reports false when the hook is already there.
func install(shell, home string) (string, bool, error) {
	var configFile, shellName string
	switch {
	case strings.Contains(shell, "zsh"):
		configFile, shellName = filepath.Join(home, ".zshrc"), "zsh"
	case strings.Contains(shell, "bash"):
		configFile, shellName = filepath.Join(home, ".bashrc"), "bash"
	default:
		return "", false, fmt.Errorf("unsupported shell %q", shell)
	}

	content, err := os.ReadFile(configFile)
	if err == nil && strings.Contains(string(content), installMarker) {
		return configFile, false, nil
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return "", false, err
	}
	if _, err := fmt.Fprintf(f, installInfo, shellName); err != nil {
		_ = f.Close()
		return "", false, err
	}
	return configFile, true, f.Close()
}
