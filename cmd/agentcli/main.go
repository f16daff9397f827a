// agentcli runs queries through the agent loop from a terminal, with an
// interactive mode for clarification choices and action approvals.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kirillkom/discord-research-agent/internal/bootstrap"
	"github.com/kirillkom/discord-research-agent/internal/config"
	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/core/ports"
	"github.com/kirillkom/discord-research-agent/internal/observability/logging"
)

const cliSessionID = "cli"

func main() {
	args := os.Args[1:]
	interactive := false
	if len(args) > 0 && (args[0] == "--interactive" || args[0] == "-i") {
		interactive = true
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: agentcli [--interactive] \"your question\"")
		os.Exit(1)
	}
	query := strings.Join(args, " ")

	cfg := config.Load()
	logger := logging.NewJSONLogger("agentcli", "error")
	app, err := bootstrap.New(cfg, logger, "agentcli")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Each CLI run starts from a clean transcript.
	app.Runner.ClearSession(cliSessionID)

	ctx := context.Background()
	result := app.Runner.Run(ctx, cliSessionID, query)

	if interactive {
		runInteractive(ctx, app.Runner, result)
		return
	}
	printResult(result)
}

func runInteractive(ctx context.Context, runner ports.AgentRunner, result domain.AgentResult) {
	reader := bufio.NewReader(os.Stdin)

	for {
		switch result.Kind {
		case domain.ResultResponse:
			printResult(result)
			fmt.Print("Continue conversation? (yes/no): ")
			if answer := readLine(reader); answer != "yes" && answer != "y" {
				return
			}
			fmt.Print("Your message: ")
			input := readLine(reader)
			if input == "" {
				return
			}
			result = runner.Run(ctx, cliSessionID, input)

		case domain.ResultAskUser:
			ask := result.AskUser
			fmt.Printf("Agent asks: %s\n", ask.Question)
			for i, option := range ask.Options {
				fmt.Printf("  %d. %s\n", i+1, option)
			}
			choice := readChoice(reader, ask.Options)
			result = runner.ResumeAfterChoice(ctx, cliSessionID, choice)

		case domain.ResultPerformAction:
			pending := result.PendingAction
			fmt.Println("Agent wants to perform actions:")
			if pending.Reasoning != "" {
				fmt.Println("  " + pending.Reasoning)
			}
			for _, call := range pending.ToolCalls {
				fmt.Printf("  - %s: %s (%s)\n", call.Kind, call.Target(), call.Reason)
			}
			fmt.Print("Approve? (y/n): ")
			answer := readLine(reader)
			approved := answer == "y" || answer == "yes"
			result = runner.ResumeAfterApproval(ctx, cliSessionID, *pending, approved)

		case domain.ResultError:
			printResult(result)
			return
		}
	}
}

func readChoice(reader *bufio.Reader, options []string) string {
	for {
		fmt.Print("Your choice (number or custom text): ")
		input := readLine(reader)
		if input == "" {
			fmt.Println("Please provide an input.")
			continue
		}
		if n, err := strconv.Atoi(input); err == nil {
			if n >= 1 && n <= len(options) {
				return options[n-1]
			}
			fmt.Printf("Please enter a number between 1 and %d, or custom text.\n", len(options))
			continue
		}
		return input
	}
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func printResult(result domain.AgentResult) {
	switch result.Kind {
	case domain.ResultResponse:
		fmt.Println(result.Response)
	case domain.ResultAskUser:
		fmt.Printf("Agent asks: %s\n", result.AskUser.Question)
		for i, option := range result.AskUser.Options {
			fmt.Printf("  %d. %s\n", i+1, option)
		}
		fmt.Println("Use --interactive mode to continue the conversation.")
	case domain.ResultPerformAction:
		fmt.Println("The agent requested actions that need approval. Use --interactive mode.")
	case domain.ResultError:
		fmt.Println("Error: " + result.Err)
	}
}
