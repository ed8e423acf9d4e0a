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
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and returns the path to the downloaded
// file. For shapefiles, it downloads all associated files and
// returns the path to the file with the ".shp" extension.
// Download problems are logged and the given path is returned.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) string {
	if path == "" {
		return path
	}
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path, log)
	}

	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}

	return path
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func downloadHTTP(path string, log logrus.FieldLogger) string {
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		log.WithError(err).Error("creating temporary download directory")
		return path
	}
	log = log.WithField("url", path)
	fnames := expandShp(path)
	for _, fname := range fnames {
		err := func() error {
			resp, err := http.Get(fname)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("http status %s", resp.Status)
			}
			w, err := os.Create(filepath.Join(dir, filepath.Base(fname)))
			if err != nil {
				return err
			}
			defer w.Close()
			_, err = io.Copy(w, resp.Body)
			return err
		}()
		if err != nil && optional(fname) {
			log.WithError(err).WithField("file", fname).Debug("skipping optional file")
			os.Remove(filepath.Join(dir, filepath.Base(fname)))
			continue
		}
		if err != nil {
			log.WithError(err).Error("downloading file")
			return path
		}
	}
	log.Info("downloaded file")
	return filepath.Join(dir, filepath.Base(fnames[0]))
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
// For the "file" provider, name is a directory relative to the
// working directory.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	url, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("centerline: opening bucket: %v", err)
	}
	switch url.Scheme {
	case "file":
		return fileblob.NewBucket(url.Hostname())
	case "gs":
		return gsBucket(ctx, url.Hostname())
	case "s3":
		return s3Bucket(ctx, url.Hostname())
	default:
		return nil, fmt.Errorf("centerline: invalid bucket provider %s", url.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) string {
	log = log.WithField("blob", path)
	url, err := url.Parse(path)
	if err != nil {
		log.WithError(err).Error("parsing blob location")
		return path
	}
	bucket, err := OpenBucket(ctx, url.Scheme+"://"+url.Host)
	if err != nil {
		log.WithError(err).Error("opening bucket")
		return path
	}
	dir, err := ioutil.TempDir("", "centerline")
	if err != nil {
		log.WithError(err).Error("creating temporary download directory")
		return path
	}
	fnames := expandShp(url.Path)
	for _, fname := range fnames {
		err := func() error {
			bucketPath := strings.TrimPrefix(fname, "/")
			r, err := bucket.NewReader(ctx, bucketPath)
			if err != nil {
				return err
			}
			defer r.Close()
			w, err := os.Create(filepath.Join(dir, filepath.Base(fname)))
			if err != nil {
				return err
			}
			defer w.Close()
			_, err = io.Copy(w, r)
			return err
		}()
		if err != nil && optional(fname) {
			log.WithError(err).WithField("file", fname).Debug("skipping optional file")
			os.Remove(filepath.Join(dir, filepath.Base(fname)))
			continue
		}
		if err != nil {
			log.WithError(err).Error("downloading blob")
			return path
		}
	}
	log.Info("downloaded blob")
	return filepath.Join(dir, filepath.Base(fnames[0]))
}

// optional reports whether a missing file can be skipped. A shapefile
// without a .prj file is still readable.
func optional(fname string) bool {
	return filepath.Ext(fname) == ".prj"
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
