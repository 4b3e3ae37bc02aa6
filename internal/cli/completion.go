// Package cli provides shell completion support
package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// BashCompletion generates bash completion script
const BashCompletion = `#!/bin/bash
# Bash completion for committee CLI

_committee_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main commands
    local commands="signup login logout committees analysis members draws paid pay amount timer lottery version help completion"

    # Global flags
    local global_flags="--help --version --config --log-level"

    case "${prev}" in
        --config)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        --log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            return 0
            ;;
        *)
            ;;
    esac

    # Complete main commands
    COMPREPLY=( $(compgen -W "${commands} ${global_flags}" -- ${cur}) )
    return 0
}

complete -F _committee_completion committee
`

// ZshCompletion generates zsh completion script
const ZshCompletion = `#compdef committee

_committee() {
    local -a commands
    commands=(
        'signup:Create a new account'
        'login:Log in with phone number and password'
        'logout:Log out and clear the saved session'
        'committees:List committees'
        'analysis:Show committee analysis'
        'members:List members of a committee'
        'draws:List draws of a committee'
        'paid:Show per-user payment status for a draw'
        'pay:Toggle payment status for a member in a draw'
        'amount:Edit a draw amount'
        'timer:Run a draw countdown'
        'lottery:Run the winner lottery for a draw'
        'version:Show version information'
        'help:Show help information'
        'completion:Generate shell completion script'
    )

    local -a global_flags
    global_flags=(
        '--help[Show help information]'
        '--version[Show version information]'
        '--config[Configuration file path]:file:_files'
        '--log-level[Log level]:level:(debug info warn error)'
    )

    _arguments -C \
        '1: :->command' \
        '*:: :->args' \
        $global_flags

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_committee "$@"
`

// FishCompletion generates fish completion script
const FishCompletion = `# Fish completion for committee CLI

# Main commands
complete -c committee -f -n "__fish_use_subcommand" -a "signup" -d "Create a new account"
complete -c committee -f -n "__fish_use_subcommand" -a "login" -d "Log in with phone number and password"
complete -c committee -f -n "__fish_use_subcommand" -a "logout" -d "Log out and clear the saved session"
complete -c committee -f -n "__fish_use_subcommand" -a "committees" -d "List committees"
complete -c committee -f -n "__fish_use_subcommand" -a "analysis" -d "Show committee analysis"
complete -c committee -f -n "__fish_use_subcommand" -a "members" -d "List members of a committee"
complete -c committee -f -n "__fish_use_subcommand" -a "draws" -d "List draws of a committee"
complete -c committee -f -n "__fish_use_subcommand" -a "paid" -d "Show per-user payment status for a draw"
complete -c committee -f -n "__fish_use_subcommand" -a "pay" -d "Toggle payment status for a member in a draw"
complete -c committee -f -n "__fish_use_subcommand" -a "amount" -d "Edit a draw amount"
complete -c committee -f -n "__fish_use_subcommand" -a "timer" -d "Run a draw countdown"
complete -c committee -f -n "__fish_use_subcommand" -a "lottery" -d "Run the winner lottery for a draw"
complete -c committee -f -n "__fish_use_subcommand" -a "version" -d "Show version information"
complete -c committee -f -n "__fish_use_subcommand" -a "help" -d "Show help information"
complete -c committee -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion"

# Completion subcommands
complete -c committee -f -n "__fish_seen_subcommand_from completion" -a "bash" -d "Generate bash completion"
complete -c committee -f -n "__fish_seen_subcommand_from completion" -a "zsh" -d "Generate zsh completion"
complete -c committee -f -n "__fish_seen_subcommand_from completion" -a "fish" -d "Generate fish completion"

# Global flags
complete -c committee -l help -d "Show help information"
complete -c committee -l version -d "Show version information"
complete -c committee -l config -r -d "Configuration file path"
complete -c committee -l log-level -x -a "debug info warn error" -d "Log level"
`

// GenerateCompletion generates shell completion script
func GenerateCompletion(shell string) error {
	var script string

	switch shell {
	case "bash":
		script = BashCompletion
	case "zsh":
		script = ZshCompletion
	case "fish":
		script = FishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}

	// Print to stdout
	fmt.Print(script)

	return nil
}

// InstallCompletion installs the completion script to the appropriate location
func InstallCompletion(shell string) error {
	var script string
	var installPath string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	switch shell {
	case "bash":
		script = BashCompletion
		installPath = filepath.Join(homeDir, ".bash_completion.d", "committee")
		if err := os.MkdirAll(filepath.Dir(installPath), 0755); err != nil {
			return fmt.Errorf("failed to create completion directory: %w", err)
		}
	case "zsh":
		script = ZshCompletion
		installPath = filepath.Join(homeDir, ".zsh", "completion", "_committee")
		if err := os.MkdirAll(filepath.Dir(installPath), 0755); err != nil {
			return fmt.Errorf("failed to create completion directory: %w", err)
		}
	case "fish":
		script = FishCompletion
		installPath = filepath.Join(homeDir, ".config", "fish", "completions", "committee.fish")
		if err := os.MkdirAll(filepath.Dir(installPath), 0755); err != nil {
			return fmt.Errorf("failed to create completion directory: %w", err)
		}
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	// Write the script
	if err := os.WriteFile(installPath, []byte(script), 0644); err != nil {
		return fmt.Errorf("failed to write completion script: %w", err)
	}

	fmt.Printf("Completion script installed to: %s\n", installPath)
	fmt.Println("\nTo enable completion, add the following to your shell config:")

	switch shell {
	case "bash":
		fmt.Println("  source ~/.bash_completion.d/committee")
	case "zsh":
		fmt.Println("  fpath=(~/.zsh/completion $fpath)")
		fmt.Println("  autoload -Uz compinit && compinit")
	case "fish":
		fmt.Println("  # Fish will automatically load completions from ~/.config/fish/completions/")
	}

	return nil
}
