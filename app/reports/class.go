package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

// Kind selects one of the per-class exports.
type Kind string

const (
	KindStudents Kind = "students"
	KindFood     Kind = "food"
	KindFinance  Kind = "finance"
)

func (k Kind) Valid() bool {
	return k == KindStudents || k == KindFood || k == KindFinance
}

// FilePrefix is the download name stem for class exports of kind k.
func (k Kind) FilePrefix(class string) string {
	switch k {
	case KindStudents:
		return "DS_HocSinh_" + class
	case KindFood:
		return "Menu_" + class
	default:
		return "TaiChinh_" + class
	}
}

func ClassStudents(class string, students []*models.Student) (*excelize.File, error) {
	f, s, err := newSheet("Học sinh lớp "+class, []column{
		{"STT", 6}, {"Họ và tên", 25}, {"Ngày sinh", 15},
		{"Số CCCD", 20}, {"Số điện thoại", 15}, {"Trạng thái ảnh", 20},
	})
	if err != nil {
		return nil, err
	}

	return build(f, func() error {
		for i, st := range students {
			images := "Chưa có"
			if n := len(st.ImagePaths()); n > 0 {
				images = fmt.Sprintf("%d ảnh", n)
			}
			err := s.add(i+1, st.FullName, calendarDate(st.DateOfBirth), st.CCCDNumber, st.PhoneNumber, images)
			if err != nil {
				return fmt.Errorf("write student %d: %w", st.ID, err)
			}
		}
		return nil
	})
}

func ClassFood(class string, items []*models.FoodItem) (*excelize.File, error) {
	f, s, err := newSheet("Menu lớp "+class, []column{
		{"STT", 6}, {"Tên món ăn", 25}, {"Giá bán", 15}, {"Mô tả", 35},
	})
	if err != nil {
		return nil, err
	}

	return build(f, func() error {
		for i, item := range items {
			values := []any{i + 1, item.Name, item.Price}
			if item.Description != nil && *item.Description != "" {
				values = append(values, *item.Description)
			}
			if err := s.add(values...); err != nil {
				return fmt.Errorf("write food item %d: %w", item.ID, err)
			}
		}
		return nil
	})
}

// ClassFinance describes the class representative and every bank account;
// rep may be nil.
func ClassFinance(class string, rep *models.Representative) (*excelize.File, error) {
	f, s, err := newSheet("Tài chính lớp "+class, []column{
		{"Thông tin", 20}, {"Giá trị", 30}, {"Chi tiết", 30},
	})
	if err != nil {
		return nil, err
	}

	return build(f, func() error {
		if rep == nil {
			return s.add("Trạng thái", StatusUnregistered)
		}
		if err := s.add("Đại diện", rep.RepresentativeName); err != nil {
			return err
		}
		for i, acc := range rep.Accounts {
			kind := "Phụ"
			if acc.IsMain {
				kind = "Chính"
			}
			err := s.add(
				fmt.Sprintf("Tài khoản %d (%s)", i+1, kind),
				fmt.Sprintf("%s - %s", acc.BankName, acc.AccountNumber),
				"CTK: "+acc.AccountHolder,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
