package server

import (
	"context"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/guard"
	"github.com/brizzai/dishom-client/internal/server/tool"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
)

// sessionStatus is the payload of the session_status tool
type sessionStatus struct {
	Hydrated      bool   `json:"hydrated"`
	Authenticated bool   `json:"authenticated"`
	Verdict       string `json:"verdict"`
	UserID        string `json:"user_id,omitempty"`
	FullName      string `json:"full_name,omitempty"`
}

func (s *Server) setupTools() {
	s.mcp.AddTool(mcp.NewTool("login",
		mcp.WithDescription("Sign in to Dishom with a mobile number and password"),
		mcp.WithString("mobile_number", mcp.Required(), mcp.Description("Registered mobile number")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
	), s.tool.Public("login", s.login))

	s.mcp.AddTool(mcp.NewTool("password_reset",
		mcp.WithDescription("Ask Dishom to e-mail a password reset link"),
		mcp.WithString("email", mcp.Required(), mcp.Description("Account e-mail address")),
	), s.tool.Public("password_reset", s.passwordReset))

	s.mcp.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Report whether a user is signed in"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.tool.Public("session_status", s.sessionStatus))

	s.mcp.AddTool(mcp.NewTool("me",
		mcp.WithDescription("Fetch the signed in user's profile"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.tool.Protected("me", s.me))

	s.mcp.AddTool(mcp.NewTool("update_profile",
		mcp.WithDescription("Update the signed in user's profile"),
		mcp.WithString("full_name", mcp.Required(), mcp.Description("Full name, at least 2 characters")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("10 digit mobile number")),
		mcp.WithString("email", mcp.Description("E-mail address")),
		mcp.WithString("state", mcp.Description("State")),
		mcp.WithString("district", mcp.Description("District")),
		mcp.WithString("pincode", mcp.Description("6 digit PIN code")),
		mcp.WithString("current_class", mcp.Description("Current class or course")),
		mcp.WithString("village", mcp.Description("Town or village")),
	), s.tool.Protected("update_profile", s.updateProfile))

	s.mcp.AddTool(mcp.NewTool("change_password",
		mcp.WithDescription("Change the signed in user's password"),
		mcp.WithString("new_password", mcp.Required(), mcp.Description("New password, at least 6 characters")),
		mcp.WithString("confirm_password", mcp.Required(), mcp.Description("New password again")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.tool.Protected("change_password", s.changePassword))

	s.mcp.AddTool(mcp.NewTool("dashboard_metrics",
		mcp.WithDescription("Platform metrics for a time range compared with the previous one"),
		mcp.WithString("range", mcp.Description("Range like 24h or 7d"), mcp.DefaultString(api.DefaultMetricsRange)),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.tool.Protected("dashboard_metrics", s.dashboardMetrics))

	s.mcp.AddTool(mcp.NewTool("logout",
		mcp.WithDescription("Sign out and forget the stored tokens"),
	), s.tool.Protected("logout", s.logout))
}

func (s *Server) login(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := s.auth.SignIn(ctx, validation.LoginForm{
		MobileNumber: request.GetString("mobile_number", ""),
		Password:     request.GetString("password", ""),
	})
	if err != nil {
		return tool.ErrorResult(err), nil
	}
	return mcp.NewToolResultText("Signed in as " + user.FullName()), nil
}

func (s *Server) passwordReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.auth.ResetPassword(ctx, validation.PasswordResetForm{
		Email: request.GetString("email", ""),
	})
	if err != nil {
		return tool.ErrorResult(err), nil
	}
	if text == "" {
		text = "Password reset requested"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) sessionStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := s.auth.Session().State()
	return tool.JSONResult(sessionStatus{
		Hydrated:      state.Hydrated,
		Authenticated: state.Authenticated(),
		Verdict:       guard.Decide(state).String(),
		UserID:        state.User.ID(),
		FullName:      state.User.FullName(),
	})
}

func (s *Server) me(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := s.auth.RefreshUser(ctx)
	if err != nil {
		return tool.ErrorResult(err), nil
	}
	return tool.JSONResult(user)
}

func (s *Server) updateProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	current := s.auth.Session().User().Profile()
	// omitted optional fields keep their current value
	form := validation.ProfileForm{
		FullName:     request.GetString("full_name", ""),
		Phone:        request.GetString("phone", ""),
		Email:        request.GetString("email", s.auth.Session().User().Email()),
		State:        request.GetString("state", current.State),
		District:     request.GetString("district", current.District),
		Pincode:      request.GetString("pincode", current.Pincode),
		CurrentClass: request.GetString("current_class", current.CurrentClass),
		Village:      request.GetString("village", current.Village),
	}

	user, err := s.auth.SaveProfile(ctx, form, nil)
	if err != nil {
		return tool.ErrorResult(err), nil
	}
	return tool.JSONResult(user)
}

func (s *Server) changePassword(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := s.auth.ChangePassword(ctx, validation.PasswordForm{
		NewPassword:     request.GetString("new_password", ""),
		ConfirmPassword: request.GetString("confirm_password", ""),
	})
	if err != nil {
		return tool.ErrorResult(err), nil
	}
	return mcp.NewToolResultText("Password updated"), nil
}

func (s *Server) dashboardMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := s.auth.API().DashboardMetrics(ctx, request.GetString("range", api.DefaultMetricsRange))
	if !res.OK() {
		return tool.ErrorResult(res.Err), nil
	}
	return tool.JSONResult(res.Data)
}

func (s *Server) logout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.auth.SignOut(ctx)
	return mcp.NewToolResultText("Signed out"), nil
}
