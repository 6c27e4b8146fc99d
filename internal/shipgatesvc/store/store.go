/*
* Archon PSO Server
* Copyright (C) 2014 Andrew Rodman
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
* ---------------------------------------------------------------------
* Persistence layer backing the shipgate: accounts, BB profile data,
* character slots, and the ship registry. Schema/engine choice is out
* of scope per spec.md section 1; this is a thin database/sql access
* layer over whatever schema operations assumes exists.
 */
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dcrodman/archon/internal/chardata"
	"github.com/dcrodman/archon/internal/serial"
)

type Store struct {
	db *sql.DB
}

// Open connects to the MySQL database at dsn and verifies
// connectivity with a ping.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Account is the shipgate's view of a player login.
type Account struct {
	ID           uint32
	Username     string
	PasswordHash string
	Banned       bool
	GuildcardNum uint32
	TeamID       uint32
}

func (s *Store) AuthenticateAccount(ctx context.Context, username, passwordHash string) (Account, int, error) {
	var a Account
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, banned, guildcard_num, team_id
		 FROM accounts WHERE username = ?`, username)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Banned, &a.GuildcardNum, &a.TeamID); err != nil {
		if err == sql.ErrNoRows {
			return Account{}, statusNoSuchAccount, nil
		}
		return Account{}, 0, fmt.Errorf("store: %w", err)
	}
	if a.Banned {
		return Account{}, statusBanned, nil
	}
	if a.PasswordHash != passwordHash {
		return Account{}, statusBadCredentials, nil
	}
	return a, statusOK, nil
}

const (
	statusOK             = 0
	statusBadCredentials = 2
	statusBanned         = 6
	statusNoSuchAccount  = 8
)

// AccountInfo carries everything BbGetAccountInfoAck needs beyond the
// Account row itself.
type AccountInfo struct {
	TeamKeyData chardata.BbTeamAndKeyData
}

func (s *Store) AccountInfo(ctx context.Context, accountID uint32) (AccountInfo, error) {
	var info AccountInfo
	row := s.db.QueryRowContext(ctx,
		`SELECT team_key_data FROM account_options WHERE account_id = ?`, accountID)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return info, nil // defaults: zero-value TeamAndKeyData
		}
		return info, fmt.Errorf("store: %w", err)
	}
	if len(blob) == 0 {
		return info, nil
	}
	if len(blob) != chardata.BbTeamAndKeyDataSize {
		return info, fmt.Errorf("store: stored team/key data for account %d is %d bytes, want %d",
			accountID, len(blob), chardata.BbTeamAndKeyDataSize)
	}
	info.TeamKeyData = chardata.DecodeBbTeamAndKeyData(serial.NewReader(blob))
	return info, nil
}

func (s *Store) UpdateOptions(ctx context.Context, accountID uint32, options uint32) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE account_options SET options = ? WHERE account_id = ?`, options, accountID)
	return err
}

func (s *Store) UpdateKeyConfig(ctx context.Context, accountID uint32, keyConfig []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE account_options SET key_config = ? WHERE account_id = ?`, keyConfig, accountID)
	return err
}

func (s *Store) UpdateJoyConfig(ctx context.Context, accountID uint32, joyConfig []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE account_options SET joy_config = ? WHERE account_id = ?`, joyConfig, accountID)
	return err
}

// GetCharacter returns the saved character in the given slot, or
// ok==false if the slot is empty.
func (s *Store) GetCharacter(ctx context.Context, accountID uint32, slot uint8) (chardata.BbFullCharData, bool, error) {
	var blob []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT full_char FROM characters WHERE account_id = ? AND slot = ?`, accountID, slot)
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return chardata.BbFullCharData{}, false, nil
		}
		return chardata.BbFullCharData{}, false, fmt.Errorf("store: %w", err)
	}
	if len(blob) != chardata.BbFullCharDataSize {
		return chardata.BbFullCharData{}, false, fmt.Errorf("store: stored character for account %d slot %d is %d bytes, want %d",
			accountID, slot, len(blob), chardata.BbFullCharDataSize)
	}
	r := serial.NewReader(blob)
	return chardata.DecodeBbFullCharData(r), true, nil
}

func (s *Store) PutCharacter(ctx context.Context, accountID uint32, slot uint8, full chardata.BbFullCharData, saveAcctData bool) error {
	w := serial.NewWriter()
	full.Encode(w)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (account_id, slot, full_char) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE full_char = VALUES(full_char)`,
		accountID, slot, w.Bytes())
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func (s *Store) SetLoginFlags(ctx context.Context, accountID uint32, flags uint32) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET login_flags = ? WHERE id = ?`, flags, accountID)
	return err
}

func (s *Store) GetLoginFlags(ctx context.Context, accountID uint32) (uint32, error) {
	var flags uint32
	row := s.db.QueryRowContext(ctx, `SELECT login_flags FROM accounts WHERE id = ?`, accountID)
	if err := row.Scan(&flags); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("store: %w", err)
	}
	return flags, nil
}

// RegisteredShip is one ship's entry in the registry table.
type RegisteredShip struct {
	Addr [4]byte
	Port uint16
	Name string
}

func (s *Store) RegisterShip(ctx context.Context, ship RegisteredShip) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ships (name, addr, port) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE addr = VALUES(addr), port = VALUES(port)`,
		ship.Name, fmt.Sprintf("%d.%d.%d.%d", ship.Addr[0], ship.Addr[1], ship.Addr[2], ship.Addr[3]), ship.Port)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func (s *Store) ListShips(ctx context.Context) ([]RegisteredShip, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, addr, port FROM ships ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer rows.Close()

	var out []RegisteredShip
	for rows.Next() {
		var name, addrStr string
		var port uint16
		if err := rows.Scan(&name, &addrStr, &port); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		var ship RegisteredShip
		ship.Name = name
		ship.Port = port
		fmt.Sscanf(addrStr, "%d.%d.%d.%d", &ship.Addr[0], &ship.Addr[1], &ship.Addr[2], &ship.Addr[3])
		out = append(out, ship)
	}
	return out, rows.Err()
}
