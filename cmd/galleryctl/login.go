package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var flagPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate against the PhotoTree server",
	Long: `Authenticate with your PhotoTree account and store the token locally.

  galleryctl login you@example.com
  galleryctl login you@example.com --password secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		password := flagPassword
		if password == "" {
			fmt.Print("Password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		client, user, err := galleryclient.Login(cliCfg.ServerURL, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		cliCfg.Token = client.Token
		if err := saveConfig(cliCfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearConfig(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp galleryclient.Response[galleryclient.User]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}
		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", resp.Data.Name, resp.Data.Email, resp.Data.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Password (prompted if omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
