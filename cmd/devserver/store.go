package main

import (
	"fmt"
	"sync"
)

// fixtureUser is an account in the in-memory store.
type fixtureUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhoneNo  string `json:"phoneNo"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

type fixtureCommittee struct {
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
}

type fixtureMember struct {
	ID          int          `json:"id"`
	CommitteeID int          `json:"committeeId"`
	User        *fixtureUser `json:"user"`
}

type fixtureDraw struct {
	ID                     int     `json:"id"`
	CommitteeID            int     `json:"committeeId"`
	CommitteeDrawAmount    float64 `json:"committeeDrawAmount"`
	CommitteeDrawPaid      float64 `json:"committeeDrawPaidAmount"`
	CommitteeDrawMinAmount float64 `json:"committeeDrawMinAmount"`
	CommitteeDrawDate      string  `json:"committeeDrawDate"`
	CommitteeDrawTime      string  `json:"committeeDrawTime"`
	IsDrawCompleted        bool    `json:"isDrawCompleted"`
}

type fixturePayment struct {
	ID          int         `json:"id"`
	CommitteeID int         `json:"committeeId"`
	DrawID      int         `json:"drawId"`
	UserID      int         `json:"userId"`
	User        paymentUser `json:"user"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

type paymentUser struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	PhoneNo            string  `json:"phoneNo"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	UserDrawAmountPaid float64 `json:"userDrawAmountPaid"`
	FineAmountPaid     float64 `json:"fineAmountPaid"`
}

// store holds all fixtures behind one mutex. Writes are rare and the dataset
// tiny, a single lock is plenty.
type store struct {
	mu         sync.Mutex
	nextUserID int
	users      map[string]*fixtureUser // keyed by phone number
	committees []fixtureCommittee
	members    []fixtureMember
	draws      []fixtureDraw
	payments   []fixturePayment
}

func newStore() *store {
	s := &store{
		users:      make(map[string]*fixtureUser),
		nextUserID: 100,
	}
	s.seed()
	return s
}

// seed loads a small but complete dataset: one admin, four members, two
// committees with draws and payment records.
func (s *store) seed() {
	admin := &fixtureUser{ID: 1, Name: "Admin", Email: "admin@example.com", PhoneNo: "9876543210", Role: "admin", Password: "admin123"}
	s.users[admin.PhoneNo] = admin

	names := []struct {
		name, email, phone string
	}{
		{"Aarav Sharma", "aarav@example.com", "9000000001"},
		{"Diya Patel", "diya@example.com", "9000000002"},
		{"Rohan Gupta", "rohan@example.com", "9000000003"},
		{"Isha Singh", "isha@example.com", "9000000004"},
	}
	for i, n := range names {
		u := &fixtureUser{ID: 2 + i, Name: n.name, Email: n.email, PhoneNo: n.phone, Role: "user", Password: "password"}
		s.users[u.PhoneNo] = u
	}

	s.committees = []fixtureCommittee{
		{ID: 1, CommitteeName: "Monthly Gold", CommitteeAmount: 5000, CommissionMax: 4, CommitteeStatus: 1, NoOfMonths: 4, CreatedAt: "2026-01-01", FineAmount: 100, ExtraDaysForFine: 3, StartCommitteeDate: "2026-01-05"},
		{ID: 2, CommitteeName: "Office Pool", CommitteeAmount: 1200, CommissionMax: 4, CommitteeStatus: 1, NoOfMonths: 6, CreatedAt: "2026-02-01", FineAmount: 50, ExtraDaysForFine: 5, StartCommitteeDate: "2026-02-10"},
	}

	memberID := 1
	for _, c := range s.committees {
		for _, n := range names {
			s.members = append(s.members, fixtureMember{ID: memberID, CommitteeID: c.ID, User: s.users[n.phone]})
			memberID++
		}
	}

	s.draws = []fixtureDraw{
		{ID: 1, CommitteeID: 1, CommitteeDrawAmount: 5000, CommitteeDrawPaid: 3200, CommitteeDrawMinAmount: 1000, CommitteeDrawDate: "2026-03-05", CommitteeDrawTime: "18:00", IsDrawCompleted: true},
		{ID: 2, CommitteeID: 1, CommitteeDrawAmount: 5000, CommitteeDrawPaid: 1100, CommitteeDrawMinAmount: 1000, CommitteeDrawDate: "2026-04-05", CommitteeDrawTime: "18:00"},
		{ID: 3, CommitteeID: 2, CommitteeDrawAmount: 1200, CommitteeDrawPaid: 0, CommitteeDrawMinAmount: 200, CommitteeDrawDate: "2026-04-10", CommitteeDrawTime: "12:30"},
	}

	paymentID := 1
	for _, m := range s.members {
		if m.CommitteeID != 1 {
			continue
		}
		s.payments = append(s.payments, fixturePayment{
			ID:          paymentID,
			CommitteeID: 1,
			DrawID:      1,
			UserID:      m.User.ID,
			User: paymentUser{
				ID:                 m.User.ID,
				Name:               m.User.Name,
				PhoneNo:            m.User.PhoneNo,
				Email:              m.User.Email,
				Role:               m.User.Role,
				UserDrawAmountPaid: 800,
			},
			CreatedAt: "2026-03-05T18:30:00Z",
			UpdatedAt: "2026-03-05T18:30:00Z",
		})
		paymentID++
	}
}

func (s *store) createUser(name, email, phone, password, role string) (*fixtureUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[phone]; exists {
		return nil, fmt.Errorf("phone number already registered")
	}
	if role == "" {
		role = "user"
	}
	u := &fixtureUser{
		ID:       s.nextUserID,
		Name:     name,
		Email:    email,
		PhoneNo:  phone,
		Role:     role,
		Password: password,
	}
	s.nextUserID++
	s.users[phone] = u
	return u, nil
}

func (s *store) authenticate(phone, password string) (*fixtureUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[phone]
	if !ok || u.Password != password {
		return nil, false
	}
	return u, true
}

func (s *store) listCommittees() []fixtureCommittee {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fixtureCommittee, len(s.committees))
	copy(out, s.committees)
	return out
}

func (s *store) committee(id int) (fixtureCommittee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.committees {
		if c.ID == id {
			return c, true
		}
	}
	return fixtureCommittee{}, false
}

func (s *store) committeeMembers(committeeID int) []fixtureMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fixtureMember
	for _, m := range s.members {
		if m.CommitteeID == committeeID {
			out = append(out, m)
		}
	}
	return out
}

func (s *store) committeeDraws(committeeID int) []fixtureDraw {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fixtureDraw
	for _, d := range s.draws {
		if d.CommitteeID == committeeID {
			out = append(out, d)
		}
	}
	return out
}

func (s *store) drawPayments(committeeID, drawID int) []fixturePayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []fixturePayment
	for _, p := range s.payments {
		if p.CommitteeID == committeeID && p.DrawID == drawID {
			out = append(out, p)
		}
	}
	return out
}

// upsertPayment records or replaces a payment amount for one user in one draw.
func (s *store) upsertPayment(committeeID, userID, drawID int, amount float64, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *fixtureUser
	for _, u := range s.users {
		if u.ID == userID {
			user = u
			break
		}
	}
	if user == nil {
		return fmt.Errorf("user %d not found", userID)
	}

	for i := range s.payments {
		p := &s.payments[i]
		if p.CommitteeID == committeeID && p.DrawID == drawID && p.UserID == userID {
			p.User.UserDrawAmountPaid = amount
			p.UpdatedAt = now
			return nil
		}
	}

	s.payments = append(s.payments, fixturePayment{
		ID:          len(s.payments) + 1,
		CommitteeID: committeeID,
		DrawID:      drawID,
		UserID:      userID,
		User: paymentUser{
			ID:                 user.ID,
			Name:               user.Name,
			PhoneNo:            user.PhoneNo,
			Email:              user.Email,
			Role:               user.Role,
			UserDrawAmountPaid: amount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (s *store) updateDrawAmount(committeeID, drawID int, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.draws {
		d := &s.draws[i]
		if d.ID == drawID && d.CommitteeID == committeeID {
			d.CommitteeDrawAmount = amount
			return nil
		}
	}
	return fmt.Errorf("draw %d not found in committee %d", drawID, committeeID)
}
