// Package export renders entity lists and reports as CSV for spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
)

// ContentType is sent with every CSV payload
const ContentType = "text/csv; charset=utf-8"

// bom lets spreadsheet applications detect UTF-8
var bom = []byte{0xEF, 0xBB, 0xBF}

const dateFormat = "02.01.2006"
const dateTimeFormat = "02.01.2006 15:04"

func write(w io.Writer, header []string, rows [][]string) error {
	if _, err := w.Write(bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func date(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func Companies(w io.Writer, companies []domain.Company) error {
	header := []string{"ID", "Firma Adı", "Adres", "Telefon", "Email", "Web Sitesi", "Şehir", "İlçe", "Posta Kodu", "Notlar", "Oluşturma Tarihi"}
	rows := make([][]string, len(companies))
	for i, c := range companies {
		created := c.CreatedAt
		rows[i] = []string{
			id(c.ID), c.Name, c.Address, c.Phone, c.Email, c.Website,
			c.City, c.District, c.PostalCode, c.Notes, date(&created, dateFormat),
		}
	}
	return write(w, header, rows)
}

func Opportunities(w io.Writer, opportunities []domain.Opportunity) error {
	header := []string{"ID", "Fırsat Adı", "Firma", "Açıklama", "Tutar", "Aşama", "Sorumlu", "Kapanış Tarihi", "Oluşturma Tarihi"}
	rows := make([][]string, len(opportunities))
	for i, o := range opportunities {
		var company, owner, amount string
		if o.Company != nil {
			company = o.Company.Name
		}
		if o.User != nil {
			owner = o.User.FullName()
		}
		if o.Amount.Valid {
			amount = o.Amount.Decimal.StringFixed(2)
		}
		created := o.CreatedAt
		rows[i] = []string{
			id(o.ID), o.Name, company, o.Description, amount, o.Stage.DisplayName(),
			owner, date(o.ClosingDate, dateFormat), date(&created, dateFormat),
		}
	}
	return write(w, header, rows)
}

func Activities(w io.Writer, activities []domain.Activity) error {
	header := []string{"ID", "Başlık", "Tip", "Firma", "Fırsat", "Açıklama", "Tarih", "Kullanıcı"}
	rows := make([][]string, len(activities))
	for i, a := range activities {
		var company, opportunity, user string
		if a.Company != nil {
			company = a.Company.Name
		}
		if a.Opportunity != nil {
			opportunity = a.Opportunity.Name
		}
		if a.User != nil {
			user = a.User.FullName()
		}
		occurred := a.OccurredAt
		rows[i] = []string{
			id(a.ID), a.Title, a.Type.DisplayName(), company, opportunity,
			a.Description, date(&occurred, dateTimeFormat), user,
		}
	}
	return write(w, header, rows)
}

func StageDistribution(w io.Writer, report []domain.StageReport) error {
	header := []string{"Aşama", "Adet", "Toplam Tutar", "Ortalama Tutar", "Yüzde"}
	rows := make([][]string, len(report))
	for i, r := range report {
		rows[i] = []string{
			r.DisplayName,
			strconv.Itoa(r.Count),
			strconv.FormatFloat(r.SumAmount, 'f', 2, 64),
			strconv.FormatFloat(r.AverageAmount, 'f', 2, 64),
			strconv.FormatFloat(r.Percent, 'f', 2, 64),
		}
	}
	return write(w, header, rows)
}
