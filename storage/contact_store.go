package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afittestide/skillprompt/skilltext"
)

// ContactStore is the address book behind the recipient skills
type ContactStore struct {
	db *DB
}

// NewContactStore creates a new contact store
func NewContactStore(db *DB) *ContactStore {
	return &ContactStore{db: db}
}

// AddContact stores a contact, replacing the address of an existing one with the same name
func (c *ContactStore) AddContact(name, address string) (*Contact, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	address = strings.TrimSpace(address)
	if name == "" {
		return nil, fmt.Errorf("contact name is empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return nil, fmt.Errorf("contact name %q contains whitespace", name)
	}
	if strings.ContainsAny(name, skilltext.Prefix+skilltext.Suffix) {
		return nil, fmt.Errorf("contact name %q contains token markers", name)
	}

	_, err := c.db.conn.Exec(`
		INSERT INTO contacts (name, address, created_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET address = excluded.address`,
		name, address, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}

	return c.GetContact(name)
}

// GetContact looks a contact up by name, ignoring case
func (c *ContactStore) GetContact(name string) (*Contact, error) {
	name = strings.TrimPrefix(name, "@")

	var contact Contact
	var createdAt int64
	err := c.db.conn.QueryRow(
		"SELECT id, name, address, created_at FROM contacts WHERE name = ?",
		name,
	).Scan(&contact.ID, &contact.Name, &contact.Address, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	contact.CreatedAt = time.Unix(createdAt, 0)
	return &contact, nil
}

// ListContacts returns all contacts ordered by name
func (c *ContactStore) ListContacts() ([]Contact, error) {
	rows, err := c.db.conn.Query("SELECT id, name, address, created_at FROM contacts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var contact Contact
		var createdAt int64
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Address, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contact.CreatedAt = time.Unix(createdAt, 0)
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// RemoveContact deletes a contact by name
func (c *ContactStore) RemoveContact(name string) error {
	name = strings.TrimPrefix(name, "@")

	result, err := c.db.conn.Exec("DELETE FROM contacts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to remove contact: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contact %q: %w", name, ErrNotFound)
	}
	return nil
}
