package storage

import "mime/multipart"

// FileStorage 文件存储后端的统一接口，本地磁盘、S3 和 GCS 三种实现
type FileStorage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
	DeleteFile(path string) error
}
