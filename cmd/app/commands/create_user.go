package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
)

// RunCreateUser registers a login account. When password is empty it is read
// from io.Reader, so it never has to appear in shell history. Outputs the new
// user in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	email, password, role string,
	format string,
	io IOTuple,
) error {
	parsedRole, err := accessDomain.ParseRole(role)
	if err != nil {
		return fmt.Errorf("invalid role %q: %w", role, err)
	}

	if password == "" {
		password, err = promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	user, err := userUseCase.Create(ctx, &authUseCase.CreateUserInput{
		Email:    email,
		Password: password,
		Role:     parsedRole,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		if err := outputUserJSON(user, io); err != nil {
			return err
		}
	} else {
		outputUserText(user, io)
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	return nil
}

func promptForPassword(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Password: ")
	line, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func outputUserText(user *authDomain.User, io IOTuple) {
	_, _ = fmt.Fprintln(io.Writer, "User created successfully!")
	_, _ = fmt.Fprintf(io.Writer, "ID:    %s\n", user.ID)
	_, _ = fmt.Fprintf(io.Writer, "Email: %s\n", user.Email)
	_, _ = fmt.Fprintf(io.Writer, "Role:  %s\n", user.Role)
}

func outputUserJSON(user *authDomain.User, io IOTuple) error {
	result := map[string]any{
		"id":        user.ID.String(),
		"email":     user.Email,
		"role":      user.Role,
		"is_active": user.IsActive,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(io.Writer, string(jsonBytes))
	return nil
}
