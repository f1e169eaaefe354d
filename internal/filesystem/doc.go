/*
Package filesystem provides the file operations shared by the working-directory
manager and the download path.

It covers two concerns:

  - Retrying os.Stat and os.Open on NFS stale file handle errors (ESTALE), so a
    storage directory mounted over NFS does not surface transient failures as
    missing downloads.
  - Relocating a finished artifact out of a job directory into durable storage,
    using rename when both paths share a filesystem and copy-then-remove when
    they do not.

Volumes ("scratch", "storage") are resolved from path prefixes and used as
metric labels only.
*/
package filesystem
