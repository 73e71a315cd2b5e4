package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats of the me command
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func newMeCmd() *cobra.Command {
	var output string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, protected(func(ctx context.Context, service *auth.Service, user models.User) error {
				if refresh {
					fresh, err := service.RefreshUser(ctx)
					if err != nil {
						return err
					}
					user = fresh
				}
				return printUser(service, user, output)
			}))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format (table|json|yaml)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the user from the backend instead of the cached copy")
	return cmd
}

func printUser(service *auth.Service, user models.User, output string) error {
	view := make(map[string]any, len(user)+1)
	for k, v := range user {
		view[k] = v
	}
	if image := user.Profile().ProfileImage; image != "" {
		view["profile_image_url"] = service.API().ResolveMediaURL(image)
	}

	switch output {
	case outputJSON:
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		fmt.Println(string(data))
		return nil
	case outputYAML:
		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		fmt.Print(string(data))
		return nil
	case outputTable:
		profile := user.Profile()
		rows := pterm.TableData{
			{"Name", user.FullName()},
			{"Mobile", user.MobileNumber()},
			{"Email", user.Email()},
			{"State", profile.State},
			{"District", profile.District},
			{"PIN", profile.Pincode},
			{"Class", profile.CurrentClass},
			{"Village", profile.Village},
		}
		if url, ok := view["profile_image_url"].(string); ok {
			rows = append(rows, []string{"Picture", url})
		}
		return pterm.DefaultTable.WithData(rows).Render()
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the profile of the signed in user",
	}
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var imagePath string
	values := map[string]*string{}

	flags := []struct{ name, usage string }{
		{"name", "Full name"},
		{"email", "Email address"},
		{"phone", "10 digit phone number"},
		{"state", "State"},
		{"district", "District"},
		{"pincode", "6 digit PIN code"},
		{"class", "Current class"},
		{"village", "Village"},
	}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields, fields not given keep their value",
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImage(imagePath)
			if err != nil {
				return err
			}

			return withService(cmd, protected(func(ctx context.Context, service *auth.Service, user models.User) error {
				profile := user.Profile()
				form := validation.ProfileForm{
					FullName:     user.FullName(),
					Email:        user.Email(),
					Phone:        user.MobileNumber(),
					State:        profile.State,
					District:     profile.District,
					Pincode:      profile.Pincode,
					CurrentClass: profile.CurrentClass,
					Village:      profile.Village,
				}
				overrides := map[string]*string{
					"name":     &form.FullName,
					"email":    &form.Email,
					"phone":    &form.Phone,
					"state":    &form.State,
					"district": &form.District,
					"pincode":  &form.Pincode,
					"class":    &form.CurrentClass,
					"village":  &form.Village,
				}
				for name, target := range overrides {
					if cmd.Flags().Changed(name) {
						*target = *values[name]
					}
				}

				saved, err := service.SaveProfile(ctx, form, image)
				if err != nil {
					return err
				}
				pterm.Success.Println("Profile updated")
				return printUser(service, saved, outputTable)
			}))
		},
	}

	for _, f := range flags {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Path of a new profile picture")
	return cmd
}

func newPasswordCmd() *cobra.Command {
	var form validation.PasswordForm

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the password of the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt(&form.NewPassword, "New password", true); err != nil {
				return err
			}
			if err := prompt(&form.ConfirmPassword, "Confirm password", true); err != nil {
				return err
			}
			return withService(cmd, protected(func(ctx context.Context, service *auth.Service, _ models.User) error {
				if err := service.ChangePassword(ctx, form); err != nil {
					return err
				}
				pterm.Success.Println("Password updated")
				return nil
			}))
		},
	}
	change.Flags().StringVar(&form.NewPassword, "new", "", "New password, prompted for when omitted")
	change.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "Confirmation of the new password")

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the password",
	}
	cmd.AddCommand(change)
	return cmd
}

func newPasswordResetCmd() *cobra.Command {
	var form validation.PasswordResetForm

	cmd := &cobra.Command{
		Use:   "password-reset",
		Short: "Request a password reset mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt(&form.Email, "Email", false); err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, service *auth.Service) error {
				text, err := service.ResetPassword(ctx, form)
				if err != nil {
					return err
				}
				if text == "" {
					text = "If the address is registered, a reset link is on its way"
				}
				pterm.Success.Println(text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Email address of the account")
	return cmd
}

// loadImage reads the profile image at path, nil when path is empty
func loadImage(path string) (*auth.Image, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &auth.Image{FileName: filepath.Base(path), Content: bytes.NewReader(content)}, nil
}
