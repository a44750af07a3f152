/*
Package cli provides command-line interface utilities for the gateway.

The cli package includes output formatters, error types, and signal
handling helpers used by the gateway command.

Output Formatting:

Command results can be rendered as plain text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		// server failed
	case <-sigChan:
		// begin graceful shutdown
	}
*/
package cli
