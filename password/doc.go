// Package password turns plaintext credentials into stored secrets and checks
// candidates against them.
//
// [Plaintext] is the default and keeps secrets as given. [Argon2] stores PHC
// strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # What this package must NOT do
//
//   - Store or retrieve credentials; the directory owns that.
//   - Import notesauth or any sibling package.
//   - Log plaintext passwords.
package password
