package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmcleod/gatehouse/credential"
	bboltstorage "github.com/jmcleod/gatehouse/storage/bbolt"
)

var (
	userDataDir string
	userName    string
	userEmail   string
	userRole    string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user records",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user record",
	RunE: func(cmd *cobra.Command, args []string) error {
		role := credential.Role(userRole)
		if !role.Valid() {
			return fmt.Errorf("role must be %s or %s", credential.RoleAdmin, credential.RoleUser)
		}

		password, err := promptPassword()
		if err != nil {
			return err
		}
		defer password.Destroy()

		store, closeStore, err := openUserStore()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Add(credential.Candidate{
			Name:          userName,
			Email:         userEmail,
			RawCredential: string(password.Bytes()),
			Role:          role,
		}); err != nil {
			return err
		}

		rec, _ := store.FindByEmail(userEmail)
		fmt.Printf("Added user %d (%s)\n", rec.ID, rec.Email)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user records",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openUserStore()
		if err != nil {
			return err
		}
		defer closeStore()

		records := store.List()
		sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
		for _, rec := range records {
			fmt.Printf("%4d  %-10s %-8s %-25s %s\n", rec.ID, rec.Role, rec.Status, rec.Email, rec.Name)
		}
		return nil
	},
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a user record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		store, closeStore, err := openUserStore()
		if err != nil {
			return err
		}
		defer closeStore()

		store.Remove(id)
		fmt.Printf("Removed user %d\n", id)
		return nil
	},
}

// promptPassword reads the password twice without echo and returns it in a
// locked buffer the caller must destroy.
func promptPassword() (*memguard.LockedBuffer, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	// NewBufferFromBytes wipes the source slice.
	buf := memguard.NewBufferFromBytes(first)

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("reading password confirmation: %w", err)
	}
	confirm := memguard.NewBufferFromBytes(second)
	defer confirm.Destroy()

	if !buf.EqualTo(confirm.Bytes()) {
		buf.Destroy()
		return nil, fmt.Errorf("passwords do not match")
	}
	return buf, nil
}

func openUserStore() (*credential.Store, func(), error) {
	if err := os.MkdirAll(userDataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bboltstorage.Open(userDataDir+"/gatehouse.db", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	store := credential.NewStore(bboltstorage.NewSlot(db, "users"))
	return store, func() { db.Close() }, nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userRemoveCmd)

	userCmd.PersistentFlags().StringVar(&userDataDir, "data-dir", "./data", "Directory for persistent data")
	userAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address (unique, case-insensitive)")
	userAddCmd.Flags().StringVar(&userRole, "role", string(credential.RoleUser), "Role (Admin or User)")
	userAddCmd.MarkFlagRequired("name")
	userAddCmd.MarkFlagRequired("email")
}
