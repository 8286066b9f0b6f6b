/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries the build/release metadata the cobra package
// prints in its --version output and startup header.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// License identifies the license a binary ships under, for GetLicenseName/
// GetLicenseBoiler/GetLicenseLegal.
type License uint8

const (
	License_MIT License = iota
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
)

var licenseNames = map[License]string{
	License_MIT:                     "MIT License",
	License_Apache_v2:                "Apache License 2.0",
	License_GNU_GPL_v3:               "GNU GENERAL PUBLIC LICENSE v3",
	License_GNU_Affero_GPL_v3:        "GNU AFFERO GENERAL PUBLIC LICENSE v3",
	License_GNU_Lesser_GPL_v3:        "GNU LESSER GENERAL PUBLIC LICENSE v3",
	License_Mozilla_PL_v2:            "Mozilla Public License 2.0",
	License_Unlicense:                "Unlicense",
	License_Creative_Common_Zero_v1:  "Creative Commons Zero v1.0",
}

// Version exposes the build/release metadata a CLI's --version and startup
// banner need.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetRootPackagePath() string
	GetLicenseName() string
	GetLicenseBoiler(lic ...License) string
	GetLicenseLegal(lic ...License) string
	GetHeader() string
	GetInfo() string
}

type vers struct {
	lic     License
	pkg     string
	desc    string
	build   string
	release string
	author  string
	prefix  string
	tm      time.Time
	root    interface{}
	numSub  int
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewVersion builds a Version. date is parsed against a handful of common
// layouts and falls back to time.Now() when empty or unparseable; pkg falls
// back to the root value's reflected package name under the same condition,
// matching the teacher's lenient-constructor convention. numSubPackage trims
// that many trailing segments off the reflected package path for
// GetRootPackagePath.
func NewVersion(lic License, pkg, desc, date, build, release, author, prefix string, root interface{}, numSubPackage int) Version {
	tm := time.Now()
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, date); err == nil {
			tm = parsed
			break
		}
	}

	if pkg == "" || pkg == "noname" {
		pkg = rootPackageLeaf(root)
	}

	return &vers{
		lic:     lic,
		pkg:     pkg,
		desc:    desc,
		build:   build,
		release: release,
		author:  author,
		prefix:  strings.ToUpper(prefix),
		tm:      tm,
		root:    root,
		numSub:  numSubPackage,
	}
}

func rootPackagePath(root interface{}) string {
	if root == nil {
		return "app"
	}
	t := reflect.TypeOf(root)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if p := t.PkgPath(); p != "" {
		return p
	}
	return t.Name()
}

func rootPackageLeaf(root interface{}) string {
	p := rootPackagePath(root)
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func trimPackagePath(path string, numSubPackage int) string {
	for i := 0; i < numSubPackage; i++ {
		idx := strings.LastIndex(path, "/")
		if idx < 0 {
			break
		}
		path = path[:idx]
	}
	return path
}

func (v *vers) GetPackage() string     { return v.pkg }
func (v *vers) GetDescription() string { return v.desc }
func (v *vers) GetBuild() string       { return v.build }
func (v *vers) GetRelease() string     { return v.release }
func (v *vers) GetPrefix() string      { return v.prefix }
func (v *vers) GetDate() string        { return v.tm.Format(time.RFC1123) }
func (v *vers) GetTime() time.Time     { return v.tm }

// GetAuthor appends the reflected root package path as the attribution
// source, so a printed banner can show where the binary's root type lives.
func (v *vers) GetAuthor() string {
	return fmt.Sprintf("%s (source: %s)", v.author, rootPackagePath(v.root))
}

func (v *vers) GetAppId() string {
	return fmt.Sprintf("%s (Runtime %s/%s %s)", v.release, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func (v *vers) GetRootPackagePath() string {
	return trimPackagePath(rootPackagePath(v.root), v.numSub)
}

func (v *vers) GetLicenseName() string {
	if n, ok := licenseNames[v.lic]; ok {
		return n
	}
	return "Unknown License"
}

func (v *vers) GetLicenseBoiler(lic ...License) string {
	l := v.lic
	if len(lic) > 0 {
		l = lic[0]
	}
	return fmt.Sprintf("%s - licensed under %s", v.pkg, licenseNames[l])
}

func (v *vers) GetLicenseLegal(lic ...License) string {
	l := v.lic
	if len(lic) > 0 {
		l = lic[0]
	}
	return fmt.Sprintf("Copyright %s %s, %s. Released under the %s.", v.GetDate(), v.author, v.pkg, licenseNames[l])
}

func (v *vers) GetHeader() string {
	return fmt.Sprintf("%s %s (%s) - %s", v.pkg, v.release, v.build, v.desc)
}

func (v *vers) GetInfo() string {
	return fmt.Sprintf("%s\nRelease: %s\nBuild: %s\nDate: %s\nAuthor: %s\nLicense: %s",
		v.pkg, v.release, v.build, v.GetDate(), v.GetAuthor(), v.GetLicenseName())
}
