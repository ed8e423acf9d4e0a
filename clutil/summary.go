/*
Copyright © 2018 the Centerline authors.
This file is part of Centerline.

Centerline is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Centerline is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Centerline.  If not, see <http://www.gnu.org/licenses/>.
*/

package clutil

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// summary records the settings and results of a run.
type summary struct {
	RunID   string
	Command string
	Version string
	Start   time.Time
	Elapsed string

	// Options are the configuration values the run used.
	Options map[string]interface{}

	// Counts are the numbers of features produced.
	Counts map[string]int
}

func (s *summary) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("centerline: creating run summary: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("centerline: writing run summary: %v", err)
	}
	return f.Close()
}

// readSummary reads a run summary written by a previous run.
func readSummary(path string) (*summary, error) {
	s := new(summary)
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("centerline: reading run summary: %v", err)
	}
	return s, nil
}
