package committee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/committeehq/committee-client/internal/api"
	"github.com/committeehq/committee-client/internal/session"
	"github.com/committeehq/committee-client/pkg/logger"
)

const (
	registerPath     = "/auth/register"
	loginPath        = "/auth/login"
	logoutPath       = "/auth/logout"
	listPath         = "/committee/get"
	analysisPath     = "/committee/analysis"
	membersPath      = "/committee/member/get"
	drawsPath        = "/committee/draw/get"
	userWisePaidPath = "/committee/draw/user-wise-paid"
	amountUpdatePath = "/draw/amount-update"
	lotteryPath      = "/committee/lottery/random-user"
)

// tokenPaths are the documented locations of the token in a login or signup
// response, checked in order. Anything else is a contract violation.
var tokenPaths = []string{"token", "data.token", "data.data.token"}

// userPaths are the documented locations of the user object.
var userPaths = []string{"data.user", "data.data.user", "user"}

// Service exposes one method per backend operation.
type Service struct {
	client *api.Client
	log    *logger.Logger
}

// NewService constructs the domain API over the request gateway.
func NewService(client *api.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("committee")
	}
	return &Service{client: client, log: log}
}

// Register creates an account. The backend returns the same session shape as
// login, so a successful signup yields usable credentials.
func (s *Service) Register(ctx context.Context, in RegisterInput) (session.Credentials, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, registerPath, in, &raw); err != nil {
		return session.Credentials{}, err
	}
	return parseAuthResponse(raw, User{Name: in.Name, Email: in.Email, PhoneNo: in.PhoneNo, Role: in.Role})
}

// Login authenticates with phone number and password.
func (s *Service) Login(ctx context.Context, phoneNo, password string) (session.Credentials, error) {
	payload := map[string]string{
		"phoneNo":  phoneNo,
		"password": password,
	}
	var raw json.RawMessage
	if err := s.client.Post(ctx, loginPath, payload, &raw); err != nil {
		return session.Credentials{}, err
	}
	return parseAuthResponse(raw, User{PhoneNo: phoneNo})
}

// Logout invalidates the current token server-side.
func (s *Service) Logout(ctx context.Context, phoneNo string) error {
	payload := map[string]string{"phoneNo": phoneNo}
	return s.client.Post(ctx, logoutPath, payload, nil)
}

// List fetches all committees visible to the current user.
func (s *Service) List(ctx context.Context) ([]CommitteeItem, error) {
	var resp CommitteeListResponse
	if err := s.client.Get(ctx, listPath, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Analysis fetches the aggregate view of one committee.
func (s *Service) Analysis(ctx context.Context, committeeID int) (AnalysisItem, error) {
	var resp AnalysisResponse
	if err := s.client.Get(ctx, withCommitteeID(analysisPath, committeeID), &resp); err != nil {
		return AnalysisItem{}, err
	}
	return resp.Data, nil
}

// Members fetches the member list of one committee.
func (s *Service) Members(ctx context.Context, committeeID int) ([]MemberItem, error) {
	var resp MemberListResponse
	if err := s.client.Get(ctx, withCommitteeID(membersPath, committeeID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Draws fetches the draw schedule of one committee.
func (s *Service) Draws(ctx context.Context, committeeID int) ([]DrawItem, error) {
	var resp DrawListResponse
	if err := s.client.Get(ctx, withCommitteeID(drawsPath, committeeID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UserWisePaid fetches per-user payment records for one draw.
func (s *Service) UserWisePaid(ctx context.Context, committeeID, drawID int) ([]PaidItem, error) {
	path := fmt.Sprintf("%s?committeeId=%d&drawId=%d", userWisePaidPath, committeeID, drawID)
	var resp PaidListResponse
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateUserWisePaid records a payment for one user in one draw.
func (s *Service) UpdateUserWisePaid(ctx context.Context, committeeID, userID, drawID int, amountPaid float64) (UpdateResult, error) {
	payload := map[string]interface{}{
		"committeeId":        committeeID,
		"userId":             userID,
		"drawId":             drawID,
		"userDrawAmountPaid": amountPaid,
	}
	var resp struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := s.client.Patch(ctx, userWisePaidPath, payload, &resp); err != nil {
		return UpdateResult{}, err
	}
	// Absent success field means the write went through.
	success := resp.Success == nil || *resp.Success
	return UpdateResult{Success: success, Message: resp.Message}, nil
}

// UpdateDrawAmount changes the amount of one draw. Amounts of zero or less
// are rejected locally before any network call.
func (s *Service) UpdateDrawAmount(ctx context.Context, committeeID, drawID int, amount float64) (UpdateResult, error) {
	if amount <= 0 {
		return UpdateResult{}, fmt.Errorf("amount must be greater than 0")
	}
	payload := map[string]interface{}{
		"committeeId": committeeID,
		"drawId":      drawID,
		"amount":      amount,
	}
	var resp struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := s.client.Patch(ctx, amountUpdatePath, payload, &resp); err != nil {
		return UpdateResult{}, err
	}
	success := resp.Success == nil || *resp.Success
	return UpdateResult{Success: success, Message: resp.Message}, nil
}

// LotteryRandomUser asks the server to pick a draw winner. The server owns
// the randomness; the client only relays the request.
func (s *Service) LotteryRandomUser(ctx context.Context, committeeID int) (Winner, string, error) {
	payload := map[string]int{"committeeId": committeeID}
	var resp struct {
		Envelope
		Data json.RawMessage `json:"data"`
	}
	if err := s.client.Post(ctx, lotteryPath, payload, &resp); err != nil {
		return Winner{}, "", err
	}

	winner, err := parseWinner(resp.Data)
	if err != nil {
		return Winner{}, "", err
	}
	return winner, resp.Message, nil
}

// SubmitLotteryResult records the winner's draw payout. The backend keeps
// winner bookkeeping on the per-user payment record.
func (s *Service) SubmitLotteryResult(ctx context.Context, committeeID, userID, drawID int, amountPaid float64) (UpdateResult, error) {
	return s.UpdateUserWisePaid(ctx, committeeID, userID, drawID, amountPaid)
}

// User aliases the session user type for callers constructing credentials.
type User = session.User

// parseAuthResponse extracts the token and user from a login/signup response.
// The token must appear at one of the documented paths; a response without
// one fails loudly instead of degrading into an empty session. Server user
// fields win; absent fields keep the fallback values from the submitted form.
func parseAuthResponse(raw []byte, fallback User) (session.Credentials, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return session.Credentials{}, fmt.Errorf("auth response is not valid JSON")
	}

	var token string
	for _, path := range tokenPaths {
		if v := gjson.GetBytes(raw, path); v.Type == gjson.String && v.Str != "" {
			token = v.Str
			break
		}
	}
	if token == "" {
		return session.Credentials{}, fmt.Errorf("auth response carries no token")
	}

	user := fallback
	for _, path := range userPaths {
		v := gjson.GetBytes(raw, path)
		if !v.IsObject() {
			continue
		}
		if name := v.Get("name"); name.Type == gjson.String && name.Str != "" {
			user.Name = name.Str
		}
		if email := v.Get("email"); email.Type == gjson.String && email.Str != "" {
			user.Email = email.Str
		}
		if phone := v.Get("phoneNo"); phone.Type == gjson.String && phone.Str != "" {
			user.PhoneNo = phone.Str
		}
		if role := v.Get("role"); role.Type == gjson.String && role.Str != "" {
			user.Role = role.Str
		}
		break
	}

	return session.Credentials{Token: token, User: user}, nil
}

// parseWinner decodes the winner from either an object or a one-element
// array and insists on a stable user id.
func parseWinner(data json.RawMessage) (Winner, error) {
	if len(data) == 0 {
		return Winner{}, fmt.Errorf("no winner found in response")
	}

	var winner Winner
	switch data[0] {
	case '[':
		var winners []Winner
		if err := json.Unmarshal(data, &winners); err != nil {
			return Winner{}, fmt.Errorf("parse winner list: %w", err)
		}
		if len(winners) == 0 {
			return Winner{}, fmt.Errorf("no winner found in response")
		}
		winner = winners[0]
	default:
		if err := json.Unmarshal(data, &winner); err != nil {
			return Winner{}, fmt.Errorf("parse winner: %w", err)
		}
	}

	if winner.WinnerUserID() == 0 {
		return Winner{}, fmt.Errorf("winner record carries no user id")
	}
	return winner, nil
}

// WinnerUserID returns the stable user id of the winner, preferring the
// explicit userId field over the record id.
func (w Winner) WinnerUserID() int {
	if w.UserID != 0 {
		return w.UserID
	}
	return w.ID
}

func withCommitteeID(path string, committeeID int) string {
	return path + "?committeeId=" + url.QueryEscape(fmt.Sprintf("%d", committeeID))
}
