package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// prompt asks for value on the terminal when it was not given as a flag
func prompt(value *string, label string, masked bool) error {
	if *value != "" {
		return nil
	}
	input := pterm.DefaultInteractiveTextInput
	if masked {
		input = *input.WithMask("*")
	}
	answer, err := input.Show(label)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", label, err)
	}
	*value = answer
	return nil
}

func newLoginCmd() *cobra.Command {
	var form validation.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a mobile number and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt(&form.MobileNumber, "Mobile number", false); err != nil {
				return err
			}
			if err := prompt(&form.Password, "Password", true); err != nil {
				return err
			}

			return withService(cmd, func(ctx context.Context, service *auth.Service) error {
				user, err := service.SignIn(ctx, form)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Signed in as %s", pterm.LightGreen(user.FullName()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&form.MobileNumber, "mobile", "m", "", "Mobile number")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password, prompted for when omitted")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var form validation.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt(&form.FullName, "Full name", false); err != nil {
				return err
			}
			if err := prompt(&form.MobileNumber, "Mobile number", false); err != nil {
				return err
			}
			if err := prompt(&form.Password, "Password", true); err != nil {
				return err
			}

			return withService(cmd, func(ctx context.Context, service *auth.Service) error {
				user, err := service.SignUp(ctx, form)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Welcome %s, you are signed in", pterm.LightGreen(user.FullName()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&form.FullName, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&form.MobileNumber, "mobile", "m", "", "Mobile number")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password, prompted for when omitted")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens and user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service *auth.Service) error {
				service.SignOut(ctx)
				pterm.Success.Println("Signed out")
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *tokenstore.Store
			return withService(cmd, func(ctx context.Context, service *auth.Service) error {
				state := service.Session().State()

				user := "signed out"
				if state.Authenticated() {
					user = fmt.Sprintf("%s (%s)", state.User.FullName(), state.User.MobileNumber())
				}

				expiry := "-"
				if access, ok := store.Access(ctx); ok {
					if exp, ok := tokenstore.AccessExpiry(access); ok {
						expiry = exp.Local().Format(time.RFC1123)
						if time.Now().After(exp) {
							expiry += " (expired, refreshed on next request)"
						}
					} else {
						expiry = "unknown"
					}
				}

				return pterm.DefaultTable.WithData(pterm.TableData{
					{"Backend", cfg.Endpoint.BaseURL},
					{"Storage", string(cfg.Storage.Driver)},
					{"Hydrated", fmt.Sprintf("%t", state.Hydrated)},
					{"User", user},
					{"Access token expires", expiry},
				}).Render()
			}, &store)
		},
	}
}
