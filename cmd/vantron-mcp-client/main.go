// Command vantron-mcp-client is an interactive shell for vantron-mcp.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: vantron-mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: vantron-mcp-client vantron-mcp -config /etc/vantron.yaml")
		os.Exit(2)
	}

	log := logrus.New()
	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "vantron-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect")
	}
	defer session.Close()

	fmt.Println("Connected to Vantron MCP Server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                    - List available tools")
	fmt.Println("  /read                     - Run one read cycle")
	fmt.Println("  /history [limit] [host]   - Show stored read cycles")
	fmt.Println("  /plan [device]            - List discovery entities")
	fmt.Println("  /exit                     - Exit the client")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		switch parts[0] {
		case "/exit":
			fmt.Println("Goodbye!")
			return

		case "/tools":
			listTools(ctx, session, log)

		case "/read":
			callTool(ctx, session, log, "read_sensors", map[string]any{})

		case "/history":
			toolArgs := map[string]any{}
			if len(parts) > 1 {
				limit, err := strconv.Atoi(parts[1])
				if err != nil {
					fmt.Println("limit must be a number")
					continue
				}
				toolArgs["limit"] = limit
			}
			if len(parts) > 2 {
				toolArgs["hostname"] = parts[2]
			}
			callTool(ctx, session, log, "get_history", toolArgs)

		case "/plan":
			toolArgs := map[string]any{}
			if len(parts) > 1 {
				toolArgs["device"] = strings.Join(parts[1:], " ")
			}
			callTool(ctx, session, log, "discovery_plan", toolArgs)

		default:
			fmt.Printf("Unknown command %q\n", parts[0])
		}
	}

	if err := scanner.Err(); err != nil {
		log.WithError(err).Error("Scanner error")
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession, log logrus.FieldLogger) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.WithError(err).Error("Error listing tools")
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, log logrus.FieldLogger, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.WithError(err).WithField("tool", toolName).Error("Error calling tool")
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Print("X Error: ")
	} else {
		fmt.Print("✓ Result: ")
	}

	if result.StructuredContent != nil {
		if data, err := json.MarshalIndent(result.StructuredContent, "", "  "); err == nil {
			fmt.Println(string(data))
			fmt.Println()
			return
		}
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			data, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(data))
			}
		}
	}
	fmt.Println()
}
