package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"

	"campushub/domain"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (conv:, msg:, notif:, pref:, user:, student:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Collection", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				collection, timestamp, entityID, detail := describe(rawKey, v)
				table.Append([]string{rawKey, collection, timestamp, entityID, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe decodes the value according to the key's collection prefix. A row
// that fails to decode still shows up, with the error in the detail column.
func describe(key string, val []byte) (collection, timestamp, entityID, detail string) {
	collection = strings.SplitN(key, ":", 2)[0]
	timestamp = "--:--:--"
	entityID = "--------"

	switch collection {
	case "msg":
		var m domain.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		timestamp = m.CreatedAt.Format("15:04:05")
		entityID = shortID(m.ID)
		detail = fmt.Sprintf("%s from %s: %s (read=%v by %d)",
			m.Type, m.SenderID, truncate(m.Content, 40), m.Read, len(m.ReadBy))
	case "notif":
		var n domain.Notification
		if err := json.Unmarshal(val, &n); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		timestamp = n.CreatedAt.Format("15:04:05")
		entityID = shortID(n.ID)
		detail = fmt.Sprintf("%s/%s to %s: %s (read=%v)",
			n.Type, n.Priority, n.RecipientID, truncate(n.Title, 40), n.Read)
	case "conv":
		var c domain.Conversation
		if err := json.Unmarshal(val, &c); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		timestamp = c.LastMessageAt.Format("15:04:05")
		entityID = shortID(c.ID)
		detail = fmt.Sprintf("%s with %d participants", c.Type, len(c.Participants))
	case "pref":
		var p domain.NotificationPreference
		if err := json.Unmarshal(val, &p); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		entityID = shortID(p.UserID)
		detail = fmt.Sprintf("messages=%v attendance=%v announcements=%v",
			p.MessageAlerts, p.AttendanceAlerts, p.AnnouncementAlerts)
	case "user":
		var u domain.User
		if err := json.Unmarshal(val, &u); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		entityID = shortID(u.ID)
		detail = fmt.Sprintf("%s active=%v", u.Role, u.Active)
	case "student":
		var s domain.Student
		if err := json.Unmarshal(val, &s); err != nil {
			return collection, timestamp, entityID, "decode error: " + err.Error()
		}
		entityID = shortID(s.ID)
		detail = fmt.Sprintf("guardian=%s active=%v", s.GuardianID, s.Active)
	default:
		detail = fmt.Sprintf("%d bytes", len(val))
	}
	return collection, timestamp, entityID, detail
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open in write mode once so badger can truncate, then reopen read-only.
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
