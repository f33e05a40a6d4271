// Command chat is a terminal front end for the assistant: log in, pick a
// country, and converse. It exercises the same session controller a UI would.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/edupath/edupath/internal/client"
)

func main() {
	baseURL := flag.String("server", envOr("EDUPATH_SERVER", "http://localhost:3000"), "assistant server URL")
	country := flag.String("country", "usa", "country to ask about")
	signup := flag.Bool("signup", false, "create a new account instead of logging in")
	flag.Parse()

	if _, ok := client.CountryNames[*country]; !ok {
		codes := make([]string, 0, len(client.CountryNames))
		for code := range client.CountryNames {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Fprintf(os.Stderr, "unknown country %q (choose one of: %s)\n", *country, strings.Join(codes, ", "))
		os.Exit(1)
	}

	ctx := context.Background()
	stdin := bufio.NewScanner(os.Stdin)
	api := client.NewAPI(*baseURL)

	identity, err := authenticate(ctx, api, stdin, *signup)
	if err != nil {
		fmt.Fprintln(os.Stderr, "authentication failed:", err)
		os.Exit(1)
	}

	ctl := client.NewController(api.WithToken(identity.Token), *country)
	if err := ctl.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "could not start session:", ctl.Banner())
		os.Exit(1)
	}

	fmt.Printf("Study Abroad Assistant — %s\n", client.CountryNames[*country])
	for _, e := range ctl.Transcript() {
		printEntry(e)
	}

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		text := strings.TrimSpace(stdin.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			return
		}

		if err := ctl.Send(ctx, text); err != nil {
			fmt.Println("! " + ctl.Banner())
			continue
		}
		transcript := ctl.Transcript()
		printEntry(transcript[len(transcript)-1])
	}
}

func authenticate(ctx context.Context, api *client.API, stdin *bufio.Scanner, signup bool) (*client.Identity, error) {
	email := prompt(stdin, "email: ")
	password := prompt(stdin, "password: ")
	if signup {
		name := prompt(stdin, "name: ")
		return api.Signup(ctx, email, password, name)
	}
	return api.Login(ctx, email, password)
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func printEntry(e client.Entry) {
	prefix := "you"
	if e.Role == "assistant" {
		prefix = "assistant"
	}
	fmt.Printf("[%s] %s\n", prefix, e.Content)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
