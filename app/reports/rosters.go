package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const (
	StatusRegistered   = "Đã đăng ký"
	StatusUnregistered = "Chưa đăng ký"
)

// Representatives lists every class once, in the order given (callers pass
// them sorted by class code). A class whose representative has at least one
// bank account shows its main account; any other class gets a row of "-".
func Representatives(classes []*models.Account, reps []*models.Representative) (*excelize.File, error) {
	f, s, err := newSheet("Danh sách đại diện lớp", []column{
		{"STT", 6}, {"Lớp", 10}, {"GVCN", 25}, {"Tên đại diện", 25},
		{"Ngân hàng", 20}, {"Số tài khoản", 20}, {"Chủ tài khoản", 25}, {"Trạng thái", 15},
	})
	if err != nil {
		return nil, err
	}

	byAccount := make(map[int64]*models.Representative, len(reps))
	for _, r := range reps {
		byAccount[r.AccountID] = r
	}

	return build(f, func() error {
		for i, cls := range classes {
			rep := byAccount[cls.ID]
			var err error
			if main := rep.MainAccount(); main != nil {
				err = s.add(i+1, cls.Username, cls.TeacherName, rep.RepresentativeName,
					main.BankName, main.AccountNumber, main.AccountHolder, StatusRegistered)
			} else {
				err = s.add(i+1, cls.Username, cls.TeacherName, "-", "-", "-", "-", StatusUnregistered)
			}
			if err != nil {
				return fmt.Errorf("write class %s: %w", cls.Username, err)
			}
		}
		return nil
	})
}

// Students lists every registered student across classes.
func Students(students []*models.Student, loc *time.Location) (*excelize.File, error) {
	f, s, err := newSheet("Danh sách học sinh mở TK", []column{
		{"STT", 6}, {"Họ và tên", 30}, {"Lớp", 10}, {"Ngày sinh", 15},
		{"Số CCCD", 18}, {"Số điện thoại", 15}, {"Ngày đăng ký", 15},
	})
	if err != nil {
		return nil, err
	}

	return build(f, func() error {
		for i, st := range students {
			err := s.add(i+1, st.FullName, st.ClassName, calendarDate(st.DateOfBirth),
				st.CCCDNumber, st.PhoneNumber, Date(st.CreatedAt, loc))
			if err != nil {
				return fmt.Errorf("write student %d: %w", st.ID, err)
			}
		}
		return nil
	})
}
