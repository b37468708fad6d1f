package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeUsersCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestValidateCommand_ValidFile(t *testing.T) {
	path := writeUsersCSV(t, "cognito:username,cognito:mfa_enabled\nu1,false\nu2,true\n")
	if err := runCommand(t, "validate", path); err != nil {
		t.Errorf("validate returned %v for a valid file", err)
	}
}

func TestValidateCommand_InvalidFile(t *testing.T) {
	path := writeUsersCSV(t, "cognito:username,cognito:mfa_enabled,email,email_verified\nu1,false,,true\n")
	if err := runCommand(t, "validate", path); err == nil {
		t.Error("validate should fail for a file with violations")
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	if err := runCommand(t, "validate", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("validate should fail for a missing file")
	}
}

func TestExportCommand_RequiresPool(t *testing.T) {
	userPoolID = ""
	if err := runCommand(t, "export"); err == nil {
		t.Error("export should fail without --user-pool-id")
	}
}

func TestImportCommand_DryRun(t *testing.T) {
	path := writeUsersCSV(t, "cognito:username,cognito:mfa_enabled\nu1,false\n")
	if err := runCommand(t, "import", "--dry-run", "-f", path); err != nil {
		t.Errorf("dry run returned %v, want validation only", err)
	}
}
