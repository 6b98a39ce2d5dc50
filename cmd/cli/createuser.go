package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/pvlink/pvlink/cmd"
	"github.com/pvlink/pvlink/internal/repository"
)

var (
	createUserNameFlag     string
	createUserPasswordFlag string
)

// CreateUserCmd provisions an account that can sign in to the management
// API. There is no self-service registration; this command is the only
// way users enter the system.
var CreateUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Creates a user account, or resets the password of an existing one.",
	Long: `Hashes the given password with bcrypt and stores the account.
Running it again for the same username replaces the stored password hash.

Example:
  pvlink create-user --username=alice --password='s3cret'`,
	Run: func(_ *cobra.Command, _ []string) {
		if createUserNameFlag == "" || createUserPasswordFlag == "" {
			fmt.Fprintln(os.Stderr, "Error: --username and --password flags are required")
			os.Exit(1)
		}

		cfg := mustLoadConfig()

		hash, err := bcrypt.GenerateFromPassword([]byte(createUserPasswordFlag), cfg.Auth.BcryptCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}

		db, closeDB := mustOpenDatabase(cfg)
		defer closeDB()

		users := repository.NewUserRepository(db)
		if err := users.Upsert(context.Background(), createUserNameFlag, string(hash)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to store user: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("User '%s' stored.\n", createUserNameFlag)
	},
}

func init() {
	CreateUserCmd.Flags().StringVar(&createUserNameFlag, "username", "", "Account username")
	CreateUserCmd.Flags().StringVar(&createUserPasswordFlag, "password", "", "Account password (hashed before storage)")
	cmd.RootCmd.AddCommand(CreateUserCmd)
}
