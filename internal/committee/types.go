// Package committee provides the typed API surface of the committee backend:
// one function per endpoint, no business logic, errors propagated unchanged
// from the gateway.
package committee

// Envelope is the common response wrapper used by the backend.
type Envelope struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success,omitempty"`
	Code    string `json:"code,omitempty"`
}

// CommitteeItem is one committee in the list view.
type CommitteeItem struct {
	ID                 int     `json:"id"`
	CommitteeName      string  `json:"committeeName"`
	CommitteeAmount    float64 `json:"committeeAmount"`
	CommissionMax      int     `json:"commissionMaxMember"`
	CommitteeStatus    int     `json:"committeeStatus"`
	NoOfMonths         int     `json:"noOfMonths"`
	CreatedAt          string  `json:"createdAt"`
	FineAmount         float64 `json:"fineAmount"`
	ExtraDaysForFine   int     `json:"extraDaysForFine"`
	StartCommitteeDate string  `json:"startCommitteeDate"`
	CommitteeType      string  `json:"committeeType,omitempty"`
	LotteryAmount      float64 `json:"lotteryAmount,omitempty"`
}

// CommitteeListResponse wraps the committee list.
type CommitteeListResponse struct {
	Envelope
	Data []CommitteeItem `json:"data"`
}

// AnalysisMetrics are the aggregate figures for one committee.
type AnalysisMetrics struct {
	TotalMembers             int     `json:"totalMembers"`
	TotalCommitteeAmount     float64 `json:"totalCommitteeAmount"`
	TotalCommitteePaidAmount float64 `json:"totalCommitteePaidAmount"`
	TotalCommitteeFineAmount float64 `json:"totalCommitteeFineAmount"`
	NoOfDrawsCompleted       int     `json:"noOfDrawsCompleted"`
	TotalDraws               int     `json:"totalDraws"`
}

// AnalysisItem is the analysis view of one committee.
type AnalysisItem struct {
	CommitteeID        int             `json:"committeeId"`
	CommitteeName      string          `json:"committeeName"`
	CommitteeAmount    float64         `json:"committeeAmount"`
	CommissionMax      int             `json:"commissionMaxMember"`
	CommitteeStatus    int             `json:"committeeStatus"`
	NoOfMonths         int             `json:"noOfMonths"`
	FineAmount         float64         `json:"fineAmount"`
	ExtraDaysForFine   int             `json:"extraDaysForFine"`
	StartCommitteeDate string          `json:"startCommitteeDate"`
	CommitteeType      string          `json:"committeeType,omitempty"`
	Analysis           AnalysisMetrics `json:"analysis"`
}

// AnalysisResponse wraps the analysis view.
type AnalysisResponse struct {
	Envelope
	Data AnalysisItem `json:"data"`
}

// MemberUser is the nested user record on a committee member.
type MemberUser struct {
	Name                string `json:"name,omitempty"`
	Email               string `json:"email,omitempty"`
	PhoneNo             string `json:"phoneNo,omitempty"`
	IsUserDrawCompleted bool   `json:"isUserDrawCompleted,omitempty"`
}

// MemberItem is one committee member.
type MemberItem struct {
	ID                  int         `json:"id,omitempty"`
	Name                string      `json:"name,omitempty"`
	Email               string      `json:"email,omitempty"`
	PhoneNo             string      `json:"phoneNo,omitempty"`
	User                *MemberUser `json:"user,omitempty"`
	IsUserDrawCompleted bool        `json:"isUserDrawCompleted,omitempty"`
}

// DisplayName returns the member's name, preferring the nested user record.
func (m MemberItem) DisplayName() string {
	if m.User != nil && m.User.Name != "" {
		return m.User.Name
	}
	return m.Name
}

// Phone returns the member's phone number, preferring the nested user record.
func (m MemberItem) Phone() string {
	if m.User != nil && m.User.PhoneNo != "" {
		return m.User.PhoneNo
	}
	return m.PhoneNo
}

// MemberListResponse wraps the member list.
type MemberListResponse struct {
	Envelope
	Data []MemberItem `json:"data"`
}

// DrawItem is one scheduled draw within a committee.
type DrawItem struct {
	ID                     int     `json:"id"`
	CommitteeID            int     `json:"committeeId"`
	CommitteeDrawAmount    float64 `json:"committeeDrawAmount"`
	CommitteeDrawPaid      float64 `json:"committeeDrawPaidAmount"`
	CommitteeDrawMinAmount float64 `json:"committeeDrawMinAmount"`
	CommitteeDrawDate      string  `json:"committeeDrawDate"`
	CommitteeDrawTime      string  `json:"committeeDrawTime"`
	IsDrawCompleted        bool    `json:"isDrawCompleted,omitempty"`
}

// DrawListResponse wraps the draw list.
type DrawListResponse struct {
	Envelope
	Data []DrawItem `json:"data"`
}

// PaidUser is the per-user payment detail on a draw.
type PaidUser struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	PhoneNo            string  `json:"phoneNo"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	UserDrawAmountPaid float64 `json:"userDrawAmountPaid"`
	FineAmountPaid     float64 `json:"fineAmountPaid"`
}

// PaidItem is one user's payment record for one draw.
type PaidItem struct {
	ID          int      `json:"id"`
	CommitteeID int      `json:"committeeId"`
	DrawID      int      `json:"drawId"`
	UserID      int      `json:"userId"`
	User        PaidUser `json:"user"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// PaidListResponse wraps the per-user payment list.
type PaidListResponse struct {
	Envelope
	Data []PaidItem `json:"data"`
}

// UpdateResult is the outcome of a write operation.
type UpdateResult struct {
	Success bool
	Message string
}

// Winner is the lottery selection returned by the server. ID identifies the
// winning user and is required; responses without a stable id are rejected.
type Winner struct {
	ID      int         `json:"id"`
	UserID  int         `json:"userId,omitempty"`
	Name    string      `json:"name,omitempty"`
	PhoneNo string      `json:"phoneNo,omitempty"`
	User    *MemberUser `json:"user,omitempty"`
}

// DisplayName returns the winner's name, preferring the nested user record.
func (w Winner) DisplayName() string {
	if w.User != nil && w.User.Name != "" {
		return w.User.Name
	}
	return w.Name
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	PhoneNo  string `json:"phoneNo"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
