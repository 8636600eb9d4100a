package addressbook

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
)

const recordColumns = `
	r.Z_PK,
	COALESCE(r.ZUNIQUEID, ''),
	COALESCE(r.ZFIRSTNAME, ''),
	COALESCE(r.ZLASTNAME, ''),
	COALESCE(r.ZMIDDLENAME, ''),
	COALESCE(r.ZNICKNAME, ''),
	COALESCE(r.ZORGANIZATION, ''),
	COALESCE(r.ZJOBTITLE, ''),
	COALESCE(r.ZDEPARTMENT, '')`

const lookupSQL = `SELECT` + recordColumns + `
	FROM ZABCDRECORD r
	WHERE r.ZUNIQUEID = ?
	LIMIT 1`

const searchSQL = `SELECT DISTINCT` + recordColumns + `
	FROM ZABCDRECORD r
	WHERE r.ZUNIQUEID IS NOT NULL
	  AND (r.ZFIRSTNAME LIKE ?
	   OR r.ZLASTNAME LIKE ?
	   OR r.ZORGANIZATION LIKE ?
	   OR (r.ZFIRSTNAME || ' ' || r.ZLASTNAME) LIKE ?)
	ORDER BY r.ZLASTNAME, r.ZFIRSTNAME
	LIMIT ?`

const phoneSearchSQL = `SELECT DISTINCT` + recordColumns + `
	FROM ZABCDRECORD r
	JOIN ZABCDPHONENUMBER p ON p.ZOWNER = r.Z_PK
	WHERE p.ZLASTFOURDIGITS = ?
	  AND r.ZUNIQUEID IS NOT NULL
	LIMIT ?`

const phonesSQL = `SELECT COALESCE(ZFULLNUMBER, ''), COALESCE(ZLABEL, '')
	FROM ZABCDPHONENUMBER
	WHERE ZOWNER = ?
	ORDER BY ZORDERINGINDEX`

const emailsSQL = `SELECT COALESCE(ZADDRESS, ''), COALESCE(ZLABEL, '')
	FROM ZABCDEMAILADDRESS
	WHERE ZOWNER = ?
	ORDER BY ZORDERINGINDEX`

// Lookup returns the contact with the given unique id, including phones
// and emails. The first database holding the id wins.
func (b *Book) Lookup(ctx context.Context, id string) (*contacts.Contact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("id", id, "contact id is required")
	}

	for _, s := range b.sources {
		c, err := s.lookup(ctx, id)
		switch {
		case err == nil:
			return c, nil
		case stderrors.Is(err, sql.ErrNoRows):
			continue
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			warnSkipped(ctx, s.path, err)
		}
	}

	return nil, errors.NewNotFoundError("contact", id)
}

func (s source) lookup(ctx context.Context, id string) (*contacts.Contact, error) {
	ctx, cancel := queryTimeout(ctx)
	defer cancel()

	var pk int64
	c := &contacts.Contact{}
	row := s.db.QueryRowContext(ctx, lookupSQL, id)
	if err := scanRecord(row, &pk, c); err != nil {
		return nil, err
	}

	phones, err := s.db.QueryContext(ctx, phonesSQL, pk)
	if err != nil {
		return nil, err
	}
	defer phones.Close()
	for phones.Next() {
		var p contacts.Phone
		if err := phones.Scan(&p.Number, &p.Label); err != nil {
			return nil, err
		}
		p.Label = cleanLabel(p.Label)
		c.Phones = append(c.Phones, p)
	}
	if err := phones.Err(); err != nil {
		return nil, err
	}

	emails, err := s.db.QueryContext(ctx, emailsSQL, pk)
	if err != nil {
		return nil, err
	}
	defer emails.Close()
	for emails.Next() {
		var e contacts.Email
		if err := emails.Scan(&e.Address, &e.Label); err != nil {
			return nil, err
		}
		e.Label = cleanLabel(e.Label)
		c.Emails = append(c.Emails, e)
	}
	return c, emails.Err()
}

// Search finds contacts whose first, last, full name or organization
// contains query.
func (b *Book) Search(ctx context.Context, query string) ([]contacts.Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("query", query, "search query is required")
	}
	pattern := "%" + query + "%"
	return b.search(ctx, searchSQL, pattern, pattern, pattern, pattern)
}

// SearchByPhone finds contacts with a phone number ending in digits. At
// least four digits are required; longer inputs are matched against the
// full number.
func (b *Book) SearchByPhone(ctx context.Context, digits string) ([]contacts.Contact, error) {
	digits = onlyDigits(digits)
	if len(digits) < 4 {
		return nil, errors.NewValidationError("phone", digits, "at least 4 digits are required")
	}

	found, err := b.search(ctx, phoneSearchSQL, digits[len(digits)-4:])
	if err != nil || len(digits) == 4 {
		return found, err
	}

	// The index only covers the last four digits.
	out := found[:0]
	for _, c := range found {
		full, err := b.Lookup(ctx, c.ID)
		if err != nil {
			continue
		}
		for _, p := range full.Phones {
			if strings.HasSuffix(onlyDigits(p.Number), digits) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (b *Book) search(ctx context.Context, query string, args ...any) ([]contacts.Contact, error) {
	seen := make(map[string]bool)
	var out []contacts.Contact

	for _, s := range b.sources {
		if len(out) >= constants.MaxSearchResults {
			break
		}
		limit := constants.MaxSearchResults - len(out)
		found, err := s.search(ctx, query, append(args[:len(args):len(args)], limit)...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			warnSkipped(ctx, s.path, err)
			continue
		}
		for _, c := range found {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}

	return out, nil
}

func (s source) search(ctx context.Context, query string, args ...any) ([]contacts.Contact, error) {
	ctx, cancel := queryTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contacts.Contact
	for rows.Next() {
		var pk int64
		var c contacts.Contact
		if err := scanRecord(rows, &pk, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, pk *int64, c *contacts.Contact) error {
	return row.Scan(pk, &c.ID, &c.FirstName, &c.LastName, &c.MiddleName,
		&c.Nickname, &c.Organization, &c.JobTitle, &c.Department)
}

// cleanLabel turns the store's "_$!<Mobile>!$_" labels into "mobile".
// Custom labels are returned as typed.
func cleanLabel(label string) string {
	if strings.HasPrefix(label, "_$!<") && strings.HasSuffix(label, ">!$_") {
		return strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(label, "_$!<"), ">!$_"))
	}
	return label
}

func onlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
