// testclient drives a running judgepad server end-to-end: it creates a
// session, runs the default program and checks the output.
//
// Usage:
//
//	go run ./cmd/testclient -addr http://localhost:8080
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	judgepad "github.com/gsarma/judgepad/sdk"
)

const expectedOutput = "12\n5\nNO"

func main() {
	addr := flag.String("addr", "http://localhost:8080", "judgepad server address")
	async := flag.Bool("async", false, "queue the run as a job and wait for it")
	flag.Parse()

	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := judgepad.New(*addr)
	if _, err := client.Health(ctx); err != nil {
		fmt.Println(fail("FAIL"), "health:", err)
		os.Exit(1)
	}

	sess, err := client.Sessions.Create(ctx)
	if err != nil {
		fmt.Println(fail("FAIL"), "create session:", err)
		os.Exit(1)
	}
	fmt.Println(dim("session"), sess.SessionID, dim("mode"), sess.State.Mode)

	var statusLine, output string
	if *async {
		queued, err := client.Runs.Run(ctx, sess.SessionID)
		if err != nil {
			fmt.Println(fail("FAIL"), "queue run:", err)
			os.Exit(1)
		}
		fmt.Println(dim("job"), queued.JobID)
		exec, err := client.Runs.Wait(ctx, sess.SessionID, queued.JobID, 500*time.Millisecond)
		if err != nil {
			fmt.Println(fail("FAIL"), "wait:", err)
			os.Exit(1)
		}
		statusLine, output = exec.StatusDescription, exec.Output
	} else {
		res, err := client.Runs.RunSync(ctx, sess.SessionID)
		if err != nil {
			fmt.Println(fail("FAIL"), "run:", err)
			os.Exit(1)
		}
		statusLine, output = res.StatusLine, res.Output
	}

	fmt.Println(dim("status"), statusLine)
	fmt.Println(output)
	if strings.TrimSpace(output) != expectedOutput {
		fmt.Println(fail("FAIL"), "unexpected output, want", fmt.Sprintf("%q", expectedOutput))
		os.Exit(1)
	}
	fmt.Println(ok("OK"))
}
