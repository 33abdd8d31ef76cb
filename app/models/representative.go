package models

import "time"

// Representative is the student who submits the banking details of a class.
type Representative struct {
	ID                 int64          `json:"id"`
	AccountID          int64          `json:"account_id"`
	ClassName          string         `json:"class_name"`
	RepresentativeName string         `json:"representative_name"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Accounts           []*BankAccount `json:"accounts,omitempty"`
}

type BankAccount struct {
	ID               int64     `json:"id"`
	RepresentativeID int64     `json:"representative_id"`
	BankName         string    `json:"bank_name"`
	AccountNumber    string    `json:"account_number"`
	AccountHolder    string    `json:"account_holder"`
	IsMain           bool      `json:"is_main"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MainAccount returns the account flagged as main, else the first one, else nil.
func (r *Representative) MainAccount() *BankAccount {
	if r == nil || len(r.Accounts) == 0 {
		return nil
	}
	for _, acc := range r.Accounts {
		if acc.IsMain {
			return acc
		}
	}
	return r.Accounts[0]
}

// Registered reports whether the class has usable banking details.
func (r *Representative) Registered() bool {
	return r.MainAccount() != nil
}
