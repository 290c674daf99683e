package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragdesk/internal/logging"
	"ragdesk/internal/workflow"
)

var passwordFlag string

// loginCmd authenticates against the service and stores the token
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session token",
	Long: `Authenticates against the RAG study service and stores the bearer
token in the state directory. Subsequent commands use it automatically.

The password is read from --password or, when absent, from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// registerCmd creates an account and logs in with it
var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

// logoutCmd discards the stored session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	RunE:  runLogout,
}

// whoamiCmd shows the stored account
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE:  runWhoami,
}

func readPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := args[0]
	password, err := readPassword()
	if err != nil {
		return err
	}

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	logger.Debug("logging in", zap.String("email", email))
	if _, err := env.client.Login(context.Background(), email, password); err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackLogin))
	}

	fmt.Printf("Logged in as %s\n", email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := args[0]
	password, err := readPassword()
	if err != nil {
		return err
	}

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	ctx := context.Background()
	logger.Debug("registering", zap.String("email", email))
	if _, err := env.client.Register(ctx, email, password); err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackSignup))
	}
	if _, err := env.client.Login(ctx, email, password); err != nil {
		return errors.New(workflow.Message(err, workflow.FallbackLogin))
	}

	fmt.Printf("Account created, logged in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	if env.creds.Token() == "" {
		fmt.Println("Not logged in")
		return nil
	}
	if err := env.creds.Logout(); err != nil {
		return fmt.Errorf("failed to discard session: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	if env.creds.Token() == "" {
		fmt.Println("Not logged in")
		return nil
	}
	email := env.creds.Email()
	if email == "" {
		email = "(unknown account)"
	}
	fmt.Println(email)
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (prompted when absent)")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (prompted when absent)")
}
