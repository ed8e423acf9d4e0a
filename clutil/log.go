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
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// newLogger returns a logger that writes to w and, if logFile is not
// empty, to logFile as well. The returned function closes the log file.
func newLogger(w io.Writer, logFile string, verbose bool) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	}
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	log.Out = w
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("centerline: problem creating log file: %v", err)
		}
		log.Out = io.MultiWriter(w, f)
		closer = f.Close
	}
	return log, closer, nil
}
