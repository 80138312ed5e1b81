// Copyright 2024 The httpwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file in the root of the source tree.

package httpwire_test

import (
	"testing"

	"github.com/intuitivelabs/httpwire"
)

func TestBufferPrepareCommitConsume(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	dst, err := b.Prepare(5)
	if err != httpwire.ErrNone {
		t.Fatalf("Prepare: %v", err)
	}
	copy(dst, "hello")
	b.Commit(5)
	if string(b.Readable()) != "hello" {
		t.Fatalf("Readable() = %q", b.Readable())
	}
	b.Consume(2)
	if string(b.Readable()) != "llo" {
		t.Fatalf("Readable() after Consume(2) = %q", b.Readable())
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
}

func TestBufferCompactsOnGrow(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	dst, _ := b.Prepare(4)
	copy(dst, "abcd")
	b.Commit(4)
	b.Consume(4) // fully drained, but backing array retained

	dst, _ = b.Prepare(3)
	copy(dst, "xyz")
	b.Commit(3)
	if string(b.Readable()) != "xyz" {
		t.Fatalf("Readable() = %q, want %q (compaction should drop consumed prefix)", b.Readable(), "xyz")
	}
}

func TestBufferCapRejectsOverflow(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	b.SetCap(4)
	if _, err := b.Prepare(5); err != httpwire.ErrBufferOverflow {
		t.Fatalf("Prepare(5) with cap 4 = %v, want ErrBufferOverflow", err)
	}
}

func TestBufferCommitClampsOverReport(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	dst, err := b.Prepare(4)
	if err != httpwire.ErrNone {
		t.Fatalf("Prepare: %v", err)
	}
	copy(dst, "abcd")
	room := cap(dst)
	// A misbehaving source claims to have written far more than the
	// Prepare(4) room it was actually given; Commit must clamp instead
	// of growing Readable() past the backing array's capacity.
	b.Commit(room + 1000)
	if b.Len() != room {
		t.Fatalf("Len() = %d after over-commit, want clamp to %d", b.Len(), room)
	}
}

func TestBufferConsumePastDataPanics(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	dst, _ := b.Prepare(2)
	copy(dst, "ab")
	b.Commit(2)
	defer func() {
		if recover() == nil {
			t.Fatal("Consume past buffered data did not panic")
		}
	}()
	b.Consume(3)
}

func TestBufferReleaseReacquire(t *testing.T) {
	b := httpwire.NewBuffer(nil)
	dst, _ := b.Prepare(2)
	copy(dst, "ab")
	b.Commit(2)
	b.Release()
	b.Reacquire()
	if b.Len() != 0 {
		t.Fatalf("Len() after Reacquire = %d, want 0", b.Len())
	}
}
