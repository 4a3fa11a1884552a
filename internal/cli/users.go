package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"finrag/internal/adapter/auth"
)

var usersOutput string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage dashboard credentials",
}

var usersGenerateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a credentials file from plaintext users",
	Long: `Hash a plaintext user list into the credentials file the dashboard server
reads. The input is a YAML map of usernames:

  ceo_acme:
    email: ceo@acme.com
    name: Jane Doe
    password: changeme
    role: ceo
    company: Acme

Passwords are bcrypt-hashed and a fresh random cookie key is generated; the
plaintext file should be deleted afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersGenerate,
}

func init() {
	usersGenerateCmd.Flags().StringVarP(&usersOutput, "output", "o", "", "output path (default from config)")
	usersCmd.AddCommand(usersGenerateCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	out := usersOutput
	if out == "" {
		out = cfg.Auth.CredentialsFile
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read user list: %w", err)
	}

	var users map[string]auth.PlainUser
	if err := yaml.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to parse user list: %w", err)
	}

	creds, err := auth.Generate(users)
	if err != nil {
		return err
	}
	if err := creds.Save(out); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	fmt.Printf("Wrote %d users to %s\n", len(users), out)
	fmt.Println("Delete the plaintext user list now.")
	return nil
}
