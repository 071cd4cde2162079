// Package session stores game sessions in memory and, optionally, on disk.
//
// Manager is safe for concurrent use. Sessions are keyed by short
// case-insensitive hex IDs generated from crypto/rand. When a
// SessionPersistence is configured the manager saves a session after
// creation and every access, and lazily loads sessions it does not hold.
//
// FilePersistence writes one zstd-compressed JSON document per session:
// seats, seed, the full world and the random generator position, so a
// reloaded session resumes exactly where it stopped.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence).WithLogger(logs.L())
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", config, players)
package session
