// Command termaite runs a task through the Plan -> Act -> Evaluate loop
// against a configured LLM provider.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"termaite/compaction"
	"termaite/config"
	"termaite/llm"
	"termaite/permission"
	"termaite/session"
	"termaite/shellexec"
	"termaite/taskloop"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		provider   string
		model      string
		mode       string
		timeout    int
		noClarify  bool
	)

	cmd := &cobra.Command{
		Use:   "termaite [task...]",
		Short: "LLM-powered terminal assistant",
		Long: "termaite accomplishes a task by planning shell commands, executing them\n" +
			"under the configured permission mode, and evaluating the results.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("provider") {
				cfg.Provider = provider
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("mode") {
				cfg.OperationMode = mode
			}
			if cmd.Flags().Changed("timeout") {
				cfg.CommandTimeout = timeout
			}
			if noClarify {
				cfg.AllowClarifyingQuestions = false
			}

			task := strings.TrimSpace(strings.Join(args, " "))
			reader := &stdinReader{scanner: bufio.NewScanner(os.Stdin)}
			if task == "" {
				task, err = reader.ReadLine("Task: ")
				if err != nil {
					return err
				}
				if strings.TrimSpace(task) == "" {
					return fmt.Errorf("no task given")
				}
			}

			return runTask(cmd.Context(), cfg, task, reader)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, ollama, ...)")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "operation mode: normal, gremlin or goblin")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "command timeout in seconds")
	cmd.Flags().BoolVar(&noClarify, "no-clarify", false, "never ask clarifying questions")
	return cmd
}

func runTask(ctx context.Context, cfg *config.Config, task string, reader *stdinReader) error {
	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	client, err := llm.NewGollmClient(cfg.Provider,
		llm.WithAPIKey(cfg.APIKey),
		llm.WithModel(cfg.Model),
		llm.WithMaxTokens(cfg.MaxResponseTokens),
		llm.WithTemperature(cfg.Temperature),
	)
	if err != nil {
		return err
	}

	stateDir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	store := session.NewFileStore(config.ContextPath(stateDir))

	compactorOpts := []compaction.CompactorOption{
		compaction.WithMaxTokens(cfg.MaxContextTokens),
		compaction.WithThreshold(cfg.CompactionThreshold),
	}
	if cfg.AccurateTokenCount {
		compactorOpts = append(compactorOpts, compaction.WithEstimator(compaction.NewTiktokenEstimator()))
	}
	compactor := compaction.NewCompactor(client, store, compactorOpts...)

	handler, err := taskloop.NewHandler(cfg, workdir, taskloop.Deps{
		Client:      client,
		Context:     compactor,
		History:     store,
		Permissions: permission.NewManager(cfg.AllowedCommands, cfg.BlacklistedCommands),
		Runner:      shellexec.NewRunner(workdir, time.Duration(cfg.CommandTimeout)*time.Second),
		Input:       reader,
	})
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		printEvents(handler.Events())
	}()

	result, err := handler.Run(ctx, task)
	handler.Close()
	<-done
	if err != nil {
		return err
	}

	switch result.Status {
	case taskloop.StatusCompleted:
		return nil
	case taskloop.StatusCancelled:
		return fmt.Errorf("task cancelled")
	default:
		return fmt.Errorf("task %s", strings.ToLower(string(result.Status)))
	}
}

// stdinReader is the interactive line-input port backed by stdin.
type stdinReader struct {
	scanner *bufio.Scanner
}

func (r *stdinReader) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("stdin closed")
	}
	return r.scanner.Text(), nil
}
