// Copyright 2026 The cntr-go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lsm detects which Linux Security Module is active (AppArmor or
// SELinux) and carries the target process's security label across into the
// attaching process, so the chroot and exec that follow run confined the
// same way the container itself is.
package lsm

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cntr-go/cntr/internal/errkind"
	"github.com/cntr-go/cntr/internal/procfs"
)

// Kind tags which LSM a Profile was read from, dispatching the differing
// transition write format and mount-label lookup below.
type Kind int

const (
	AppArmor Kind = iota
	SELinux
)

func (k Kind) profilePath(pid int) string {
	switch k {
	case AppArmor:
		process := "self"
		if pid != 0 {
			process = strconv.Itoa(pid)
		}
		return filepath.Join(procfs.BasePath(), process, "attr", "current")
	default:
		process := "thread-self"
		if pid != 0 {
			process = strconv.Itoa(pid)
		}
		return filepath.Join(procfs.BasePath(), process, "attr", "exec")
	}
}

// Profile is a pending security-label transition: the target's label,
// already confirmed to differ from our own, and the open handle this
// process writes the transition request to.
type Profile struct {
	kind      Kind
	label     string
	labelFile *os.File
}

func isAppArmorEnabled() (bool, error) {
	const path = "/sys/module/apparmor/parameters/enabled"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errkind.Wrap(errkind.Security, "read "+path, err)
	}
	return string(data) == "Y\n", nil
}

func isSELinuxEnabled() (bool, error) {
	const path = "/proc/filesystems"
	f, err := os.Open(path)
	if err != nil {
		return false, errkind.Wrap(errkind.Security, "open "+path, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "selinuxfs") {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, errkind.Wrap(errkind.Security, "read "+path, err)
	}
	return false, nil
}

func checkType() (Kind, bool, error) {
	aa, err := isAppArmorEnabled()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check availability of apparmor: %w", err)
	}
	if aa {
		return AppArmor, true, nil
	}
	se, err := isSELinuxEnabled()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check availability of selinux: %w", err)
	}
	if se {
		return SELinux, true, nil
	}
	return 0, false, nil
}

func readProcLabel(path string, kind Kind) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errkind.Wrap(errkind.Security, "read "+path, err)
	}
	if kind == AppArmor {
		// AppArmor's attr/current is "profile (enforce)\n"; the label is the
		// first field.
		trimmed := strings.TrimRight(string(data), "\n")
		fields := strings.SplitN(trimmed, " ", 2)
		return fields[0], nil
	}
	return string(data), nil
}

// ReadProfile detects the active LSM and, if the target pid's label differs
// from this process's own label, returns a Profile describing the pending
// transition. Returns (nil, nil) when no LSM is enabled or the labels
// already match, in which case there is nothing to inherit.
func ReadProfile(pid int) (*Profile, error) {
	kind, ok, err := checkType()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	targetPath := kind.profilePath(pid)
	targetLabel, err := readProcLabel(targetPath, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get security label of target process: %w", err)
	}

	ownPath := kind.profilePath(0)
	ownLabel, err := readProcLabel(ownPath, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get own security label: %w", err)
	}

	if targetLabel == ownLabel {
		return nil, nil
	}

	f, err := os.OpenFile(ownPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, errkind.Wrap(errkind.Security, "open "+ownPath, err)
	}

	return &Profile{kind: kind, label: targetLabel, labelFile: f}, nil
}

// InheritProfile writes the transition request for this LSM's format,
// consuming the Profile's open handle.
func (p *Profile) InheritProfile() error {
	defer p.labelFile.Close()
	var attr string
	switch p.kind {
	case AppArmor:
		attr = "changeprofile " + p.label
	default:
		attr = p.label
	}
	if _, err := p.labelFile.WriteString(attr); err != nil {
		return errkind.Wrap(errkind.Security, fmt.Sprintf("write %q to profile attr", attr), err)
	}
	return nil
}

// MountLabel returns the SELinux context the bind mounts performed on pid's
// behalf should carry, or nil for AppArmor (which has no mount label
// concept). For SELinux it returns an error when pid's root mount carries
// no SELinux context.
func (p *Profile) MountLabel(pid int) (*string, error) {
	if p.kind == AppArmor {
		return nil, nil
	}
	context, err := procfs.ParseSELinuxMountContext(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selinux mount options: %w", err)
	}
	return &context, nil
}
