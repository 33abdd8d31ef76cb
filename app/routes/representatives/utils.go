package representatives

import (
	"strconv"
	"strings"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const (
	msgNameRequired     = "Vui lòng nhập tên đại diện"
	msgAccountsRequired = "Vui lòng nhập ít nhất một tài khoản ngân hàng"
)

// Submission is a validated representative form.
type Submission struct {
	Name     string
	Accounts []models.BankAccount
}

// ParseSubmission builds the bank account list from the parallel form
// arrays. A row missing any of its three fields is dropped. mainIndex names
// a row by its position in the submitted arrays; when it is not a kept row,
// the first kept row becomes the main account.
func ParseSubmission(name string, banks, numbers, holders []string, mainIndex string) (*Submission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}

	main, err := strconv.Atoi(strings.TrimSpace(mainIndex))
	if err != nil {
		main = -1
	}

	rows := max(len(banks), len(numbers), len(holders))
	accounts := make([]models.BankAccount, 0, rows)
	hasMain := false
	for i := 0; i < rows; i++ {
		acc := models.BankAccount{
			BankName:      field(banks, i),
			AccountNumber: field(numbers, i),
			AccountHolder: field(holders, i),
		}
		if acc.BankName == "" || acc.AccountNumber == "" || acc.AccountHolder == "" {
			continue
		}
		if i == main {
			acc.IsMain = true
			hasMain = true
		}
		accounts = append(accounts, acc)
	}

	if len(accounts) == 0 {
		return nil, apperr.Validation(msgAccountsRequired)
	}
	if !hasMain {
		accounts[0].IsMain = true
	}
	return &Submission{Name: name, Accounts: accounts}, nil
}

func field(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}
