package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

func readRows(t *testing.T, f *excelize.File) (string, [][]string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer out.Close()

	name := out.GetSheetName(0)
	rows, err := out.GetRows(name)
	require.NoError(t, err)
	return name, rows
}

func classes() []*models.Account {
	return []*models.Account{
		{ID: 1, Username: "10A1", TeacherName: "Mạc Kim Khai"},
		{ID: 2, Username: "10A2", TeacherName: "Lê Nguyễn Thế Bảo"},
	}
}

func TestRepresentatives_NoRegistrations(t *testing.T) {
	f, err := Representatives(classes(), nil)
	require.NoError(t, err)

	name, rows := readRows(t, f)
	require.Equal(t, "Danh sách đại diện lớp", name)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"STT", "Lớp", "GVCN", "Tên đại diện", "Ngân hàng", "Số tài khoản", "Chủ tài khoản", "Trạng thái"}, rows[0])
	for _, row := range rows[1:] {
		require.Equal(t, StatusUnregistered, row[7])
		require.Equal(t, "-", row[3])
	}
}

func TestRepresentatives_UsesMainAccount(t *testing.T) {
	reps := []*models.Representative{{
		AccountID:          2,
		RepresentativeName: "Trần C",
		Accounts: []*models.BankAccount{
			{BankName: "VCB", AccountNumber: "1", AccountHolder: "TRAN C"},
			{BankName: "ACB", AccountNumber: "2", AccountHolder: "TRAN C", IsMain: true},
		},
	}, {
		AccountID:          1,
		RepresentativeName: "No accounts",
	}}

	f, err := Representatives(classes(), reps)
	require.NoError(t, err)

	_, rows := readRows(t, f)
	require.Equal(t, []string{"1", "10A1", "Mạc Kim Khai", "-", "-", "-", "-", StatusUnregistered}, rows[1])
	require.Equal(t, []string{"2", "10A2", "Lê Nguyễn Thế Bảo", "Trần C", "ACB", "2", "TRAN C", StatusRegistered}, rows[2])
}

func TestRepresentatives_HeaderStyle(t *testing.T) {
	f, err := Representatives(classes(), nil)
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle("Danh sách đại diện lớp", "H1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.True(t, style.Font.Bold)
	require.Len(t, style.Fill.Color, 1)
	require.True(t, strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), headerColor))
}

func TestStudents_Dates(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	students := []*models.Student{{
		FullName:    "Nguyễn An",
		ClassName:   "10A1",
		DateOfBirth: time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC),
		CCCDNumber:  "0123",
		PhoneNumber: "0909",
		CreatedAt:   time.Date(2026, 2, 28, 20, 0, 0, 0, time.UTC),
	}}

	f, err := Students(students, loc)
	require.NoError(t, err)

	name, rows := readRows(t, f)
	require.Equal(t, "Danh sách học sinh mở TK", name)
	require.Equal(t, []string{"1", "Nguyễn An", "10A1", "02/01/2009", "0123", "0909", "01/03/2026"}, rows[1])
}

func TestClassStudents_ImageStatus(t *testing.T) {
	front, back := "/uploads/f.png", "/uploads/b.png"
	f, err := ClassStudents("10A1", []*models.Student{
		{FullName: "A", CCCDFront: &front, CCCDBack: &back},
		{FullName: "B", CCCDFront: &front},
		{FullName: "C"},
	})
	require.NoError(t, err)

	name, rows := readRows(t, f)
	require.Equal(t, "Học sinh lớp 10A1", name)
	require.Equal(t, "2 ảnh", rows[1][5])
	require.Equal(t, "1 ảnh", rows[2][5])
	require.Equal(t, "Chưa có", rows[3][5])
}

func TestClassFood(t *testing.T) {
	desc := "Giòn"
	f, err := ClassFood("10A1", []*models.FoodItem{
		{Name: "Bánh mì", Price: 15000, Description: &desc},
		{Name: "Nước", Price: 5000},
	})
	require.NoError(t, err)

	name, rows := readRows(t, f)
	require.Equal(t, "Menu lớp 10A1", name)
	require.Equal(t, []string{"1", "Bánh mì", "15000", "Giòn"}, rows[1])
	require.Equal(t, []string{"2", "Nước", "5000"}, rows[2])
}

func TestClassFinance(t *testing.T) {
	f, err := ClassFinance("10A1", &models.Representative{
		RepresentativeName: "Trần C",
		Accounts: []*models.BankAccount{
			{BankName: "VCB", AccountNumber: "1", AccountHolder: "TRAN C", IsMain: true},
			{BankName: "ACB", AccountNumber: "2", AccountHolder: "TRAN C"},
		},
	})
	require.NoError(t, err)

	_, rows := readRows(t, f)
	require.Equal(t, []string{"Đại diện", "Trần C"}, rows[1])
	require.Equal(t, []string{"Tài khoản 1 (Chính)", "VCB - 1", "CTK: TRAN C"}, rows[2])
	require.Equal(t, []string{"Tài khoản 2 (Phụ)", "ACB - 2", "CTK: TRAN C"}, rows[3])

	f, err = ClassFinance("10A2", nil)
	require.NoError(t, err)
	_, rows = readRows(t, f)
	require.Equal(t, []string{"Trạng thái", StatusUnregistered}, rows[1])
}

func TestKind(t *testing.T) {
	require.True(t, KindFood.Valid())
	require.False(t, Kind("grades").Valid())
	require.Equal(t, "DS_HocSinh_10A1", KindStudents.FilePrefix("10A1"))
	require.Equal(t, "TaiChinh_10A1", KindFinance.FilePrefix("10A1"))
}

func TestFilename(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	now := time.Date(2026, 2, 28, 20, 0, 0, 0, time.UTC)
	require.Equal(t, "DanhSachDaiDien_2026-03-01.xlsx", Filename("DanhSachDaiDien", now, loc))
}
